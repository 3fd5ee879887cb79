package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Jox86/sipp-api/internal/auth"
	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	budgetService  *service.BudgetService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, budgetService *service.BudgetService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		budgetService:  budgetService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description Get paginated list of projects with derived budget figures
// @Tags Projects
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param ownerId query string false "Filter by owner ID" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProjectDTO}
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	var ownerID *uuid.UUID
	if raw := r.URL.Query().Get("ownerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid ownerId")
			return
		}
		ownerID = &id
	}
	// Requesters only ever see their own projects
	if userCtx, ok := auth.FromContext(r.Context()); ok && userCtx.Role == domain.RoleRequester {
		ownerID = &userCtx.UserID
	}

	result, err := h.projectService.List(r.Context(), ownerID, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create a project
// @Description Register a project with a budget that gates order creation
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body domain.CreateProjectRequest true "Project"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create project", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// Get godoc
// @Summary Get a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectDTO
// @Failure 404 {object} domain.APIError
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	dto, err := h.projectService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Update godoc
// @Summary Update a project
// @Description Apply administrative edits to a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param project body domain.UpdateProjectRequest true "Fields to update"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req domain.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.projectService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update project", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// GetBudget godoc
// @Summary Get a project's remaining budget
// @Description Budget figures derived from the orders referencing the project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param editingOrderId query string false "Order being edited, excluded from the committed sum" format(uuid)
// @Success 200 {object} domain.RemainingBudgetDTO
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/budget [get]
func (h *ProjectHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var editingOrderID *uuid.UUID
	if raw := r.URL.Query().Get("editingOrderId"); raw != "" {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid editingOrderId")
			return
		}
		editingOrderID = &orderID
	}

	dto, err := h.budgetService.RemainingBudget(r.Context(), id, editingOrderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}
