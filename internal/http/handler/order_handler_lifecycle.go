package handler

// Lifecycle endpoints for orders: selection, proposal negotiation, denial,
// completion, archival and manual status overrides.

import (
	"encoding/json"
	"net/http"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return uuid.Nil, false
	}
	return id, true
}

// SelectItems godoc
// @Summary Back-office selection over a catalog-backed order
// @Description Marks lines approved or rejected; moves the order to Modificado
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param selection body domain.SelectItemsRequest true "Per-line selection"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /orders/{id}/selection [post]
func (h *OrderHandler) SelectItems(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req domain.SelectItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.SelectItems(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("selection failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// GetProposalOptimal godoc
// @Summary Proposal with the advisory optimal candidate
// @Description Returns the order's proposal; optimalIndex marks the computed best candidate
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} domain.ProposalDTO
// @Failure 404 {object} domain.APIError
// @Router /orders/{id}/proposal/optimal [get]
func (h *OrderHandler) GetProposalOptimal(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	dto, err := h.orderService.ProposalOptimal(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// RespondToSelection godoc
// @Summary Requester response to a selection
// @Description Checkbox response over the order's lines; moves the order to Respondido
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param response body domain.RespondSelectionRequest true "Per-line response"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /orders/{id}/selection/response [post]
func (h *OrderHandler) RespondToSelection(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req domain.RespondSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.RespondToSelection(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("selection response failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// SendProposal godoc
// @Summary Attach a proposal to a non-catalog order
// @Description Validates candidates and moves the order to Propuesta enviada
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param proposal body domain.SendProposalRequest true "Proposal"
// @Success 200 {object} domain.OrderDTO
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Router /orders/{id}/proposal [post]
func (h *OrderHandler) SendProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req domain.SendProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.SendProposal(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("proposal send failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// RespondToProposal godoc
// @Summary Requester response to a proposal
// @Description Acceptance moves the order to Respondido; rejection denies it
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param response body domain.RespondProposalRequest true "Response"
// @Success 200 {object} domain.OrderDTO
// @Failure 409 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Router /orders/{id}/proposal/response [post]
func (h *OrderHandler) RespondToProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req domain.RespondProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.RespondToProposal(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("proposal response failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Deny godoc
// @Summary Deny an order
// @Description Requires a reason from the enumerated list; "Otra razón" needs a free-text reason
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param denial body domain.DenyOrderRequest true "Denial reason"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /orders/{id}/deny [post]
func (h *OrderHandler) Deny(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req domain.DenyOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.Deny(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("order denial failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Complete godoc
// @Summary Complete an order
// @Description Moves the order to Completado and returns the fixed delivery notice
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} domain.CompleteOrderResponse
// @Failure 409 {object} domain.APIError
// @Router /orders/{id}/complete [post]
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	resp, err := h.orderService.Complete(r.Context(), id)
	if err != nil {
		h.logger.Error("order completion failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Archive godoc
// @Summary Archive an order
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} domain.OrderDTO
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /orders/{id}/archive [post]
func (h *OrderHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	dto, err := h.orderService.Archive(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Unarchive godoc
// @Summary Unarchive an order back to Pendiente
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} domain.OrderDTO
// @Failure 409 {object} domain.APIError
// @Router /orders/{id}/unarchive [post]
func (h *OrderHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	dto, err := h.orderService.Unarchive(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// SetStatus godoc
// @Summary Set a manual status
// @Description Sets En proceso or Aceptado, the manual statuses with no automated entry or exit
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param status body domain.SetStatusRequest true "Status"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req domain.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.orderService.SetManualStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		h.logger.Error("manual status change failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}
