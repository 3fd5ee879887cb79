package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// List godoc
// @Summary List catalog entries
// @Description Supplier catalogs with their items, optionally filtered by kind
// @Tags Catalog
// @Produce json
// @Param dataType query string false "Catalog kind" Enums(productos, servicios)
// @Success 200 {array} domain.CatalogEntryDTO
// @Failure 400 {object} domain.APIError
// @Router /catalog [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	var kind *domain.CatalogKind
	if raw := r.URL.Query().Get("dataType"); raw != "" {
		k := domain.CatalogKind(raw)
		if !k.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid dataType")
			return
		}
		kind = &k
	}

	entries, err := h.catalogService.ListEntries(r.Context(), kind)
	if err != nil {
		h.logger.Error("failed to list catalog entries", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// Create godoc
// @Summary Register a supplier catalog
// @Tags Catalog
// @Accept json
// @Produce json
// @Param entry body domain.CreateCatalogEntryRequest true "Catalog entry"
// @Success 201 {object} domain.CatalogEntryDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Router /catalog [post]
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCatalogEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.catalogService.CreateEntry(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create catalog entry", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// Get godoc
// @Summary Get a catalog entry
// @Tags Catalog
// @Produce json
// @Param id path string true "Entry ID" format(uuid)
// @Success 200 {object} domain.CatalogEntryDTO
// @Failure 404 {object} domain.APIError
// @Router /catalog/{id} [get]
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry ID")
		return
	}

	dto, err := h.catalogService.GetEntry(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// SetContract godoc
// @Summary Toggle a supplier contract
// @Description An inactive contract blocks purchase of every item in the entry
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Entry ID" format(uuid)
// @Param body body object{contractActive=bool} true "Contract flag"
// @Success 200 {object} domain.CatalogEntryDTO
// @Failure 404 {object} domain.APIError
// @Router /catalog/{id}/contract [patch]
func (h *CatalogHandler) SetContract(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry ID")
		return
	}

	var req struct {
		ContractActive bool `json:"contractActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dto, err := h.catalogService.SetContractActive(r.Context(), id, req.ContractActive)
	if err != nil {
		h.logger.Error("failed to toggle contract", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}
