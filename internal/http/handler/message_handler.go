package handler

import (
	"net/http"

	"github.com/Jox86/sipp-api/internal/auth"
	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MessageHandler struct {
	relayService *service.RelayService
	logger       *zap.Logger
}

func NewMessageHandler(relayService *service.RelayService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		relayService: relayService,
		logger:       logger,
	}
}

// List godoc
// @Summary List the caller's messages
// @Description Per-role read/unread projection over order events
// @Tags Messages
// @Produce json
// @Success 200 {array} domain.MessageDTO
// @Failure 401 {object} domain.APIError
// @Router /messages [get]
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer := auth.MustFromContext(r.Context())
	messages, err := h.relayService.ListForViewer(r.Context(), viewer)
	if err != nil {
		h.logger.Error("failed to list messages", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// UnreadCount godoc
// @Summary Count the caller's unread messages
// @Tags Messages
// @Produce json
// @Success 200 {object} domain.UnreadCountDTO
// @Failure 401 {object} domain.APIError
// @Router /messages/unread/count [get]
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	viewer := auth.MustFromContext(r.Context())
	count, err := h.relayService.UnreadCount(r.Context(), viewer)
	if err != nil {
		h.logger.Error("failed to count unread messages", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.UnreadCountDTO{Count: count})
}

// MarkRead godoc
// @Summary Mark an order's message as read
// @Description Idempotent; marking twice keeps the message read
// @Tags Messages
// @Produce json
// @Param orderId path string true "Order ID" format(uuid)
// @Success 200 {object} domain.MessageDTO
// @Failure 404 {object} domain.APIError
// @Router /messages/{orderId}/read [post]
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	viewer := auth.MustFromContext(r.Context())
	dto, err := h.relayService.MarkRead(r.Context(), orderID, viewer)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// MarkUnread godoc
// @Summary Mark an order's message as unread
// @Tags Messages
// @Produce json
// @Param orderId path string true "Order ID" format(uuid)
// @Success 200 {object} domain.MessageDTO
// @Failure 404 {object} domain.APIError
// @Router /messages/{orderId}/unread [post]
func (h *MessageHandler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	viewer := auth.MustFromContext(r.Context())
	dto, err := h.relayService.MarkUnread(r.Context(), orderID, viewer)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}
