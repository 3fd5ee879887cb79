package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/repository"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// Checkout godoc
// @Summary Commit a cart against a project
// @Description Creates one order per kind in the cart; mixed carts split into sibling orders sharing a base number
// @Tags Orders
// @Accept json
// @Produce json
// @Param cart body domain.CheckoutRequest true "Cart"
// @Success 201 {object} domain.CheckoutResponse
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Router /orders/checkout [post]
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.orderService.Checkout(r.Context(), &req)
	if err != nil {
		h.logger.Error("checkout failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// List godoc
// @Summary List orders
// @Description Requesters see their own orders; back-office sees all
// @Tags Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param projectId query string false "Filter by project" format(uuid)
// @Param includeDeleted query bool false "Include soft-deleted orders" default(false)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.OrderDTO}
// @Failure 401 {object} domain.APIError
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.OrderFilter{}

	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > 200 {
		filter.PageSize = 200
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.OrderStatus(raw)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("projectId"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid projectId")
			return
		}
		filter.ProjectID = &projectID
	}
	filter.IncludeDeleted = r.URL.Query().Get("includeDeleted") == "true"

	result, err := h.orderService.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Get godoc
// @Summary Get an order
// @Description Soft-deleted orders remain readable for audit
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} domain.OrderDTO
// @Failure 404 {object} domain.APIError
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	dto, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Update godoc
// @Summary Edit and resubmit an order
// @Description Rewrites the order's lines, appends a revision snapshot and resets the status to Pendiente
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param order body domain.UpdateOrderRequest true "New lines"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Router /orders/{id} [put]
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req domain.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update order", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Purge godoc
// @Summary Soft-delete an order
// @Description The order disappears from listings but stays readable for audit
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} domain.OrderDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /orders/{id} [delete]
func (h *OrderHandler) Purge(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	dto, err := h.orderService.Purge(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to purge order", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// ListRevisions godoc
// @Summary List an order's revision history
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {array} domain.OrderRevision
// @Failure 404 {object} domain.APIError
// @Router /orders/{id}/revisions [get]
func (h *OrderHandler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	revisions, err := h.orderService.ListRevisions(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, revisions)
}
