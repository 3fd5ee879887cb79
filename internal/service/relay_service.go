package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jox86/sipp-api/internal/auth"
	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/mapper"
	"github.com/Jox86/sipp-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RelayService maintains the cross-role message relay: one row per
// (order, recipient role) that flips unread on every action by the other
// side. Relay failures never fail the action that triggered them.
type RelayService struct {
	messageRepo *repository.MessageRepository
	orderRepo   *repository.OrderRepository
	logger      *zap.Logger
}

// NewRelayService creates a new RelayService
func NewRelayService(messageRepo *repository.MessageRepository, orderRepo *repository.OrderRepository, logger *zap.Logger) *RelayService {
	return &RelayService{
		messageRepo: messageRepo,
		orderRepo:   orderRepo,
		logger:      logger,
	}
}

// Notify records an action on an order for the actor's counterpart role,
// creating the message row lazily on the first cross-role action and
// flipping it unread on every later one. Requester actions address the
// back-office; back-office actions address the requester.
func (s *RelayService) Notify(ctx context.Context, order *domain.Order, actor *auth.UserContext, action string) {
	recipientRole := actor.Role.Counterpart()

	msg, err := s.messageRepo.GetByOrderAndRole(ctx, order.ID, recipientRole)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("relay lookup failed",
			zap.String("orderId", order.ID.String()),
			zap.Error(err))
		return
	}

	if msg == nil {
		msg = &domain.Message{
			OrderID:       order.ID,
			RecipientRole: recipientRole,
			SenderID:      actor.UserID,
			SenderRole:    actor.Role,
			UserAction:    action,
			Read:          false,
		}
		if recipientRole == domain.RoleRequester {
			requesterID := order.RequesterID
			msg.RecipientID = &requesterID
		}
		if err := s.messageRepo.Create(ctx, msg); err != nil {
			s.logger.Warn("relay create failed",
				zap.String("orderId", order.ID.String()),
				zap.Error(err))
		}
		return
	}

	msg.SenderID = actor.UserID
	msg.SenderRole = actor.Role
	msg.UserAction = action
	msg.Read = false
	msg.ReadAt = nil
	msg.ReadBy = ""
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		s.logger.Warn("relay update failed",
			zap.String("orderId", order.ID.String()),
			zap.Error(err))
	}
}

// MarkRead marks the viewer's message for an order as read. Idempotent:
// marking an already-read message keeps it read and does not error.
func (s *RelayService) MarkRead(ctx context.Context, orderID uuid.UUID, viewer *auth.UserContext) (*domain.MessageDTO, error) {
	msg, err := s.messageRepo.GetByOrderAndRole(ctx, orderID, s.viewerRole(viewer))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	if !msg.Read {
		now := time.Now()
		msg.Read = true
		msg.ReadAt = &now
		msg.ReadBy = viewer.DisplayName
		if err := s.messageRepo.Update(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to mark message read: %w", err)
		}
	}

	dto := mapper.ToMessageDTO(msg)
	return &dto, nil
}

// MarkUnread flips the viewer's message for an order back to unread
func (s *RelayService) MarkUnread(ctx context.Context, orderID uuid.UUID, viewer *auth.UserContext) (*domain.MessageDTO, error) {
	msg, err := s.messageRepo.GetByOrderAndRole(ctx, orderID, s.viewerRole(viewer))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	if msg.Read {
		msg.Read = false
		msg.ReadAt = nil
		msg.ReadBy = ""
		if err := s.messageRepo.Update(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to mark message unread: %w", err)
		}
	}

	dto := mapper.ToMessageDTO(msg)
	return &dto, nil
}

// IsRead reports whether the viewer's message for an order is read.
// Defaults to false when no row exists yet.
func (s *RelayService) IsRead(ctx context.Context, orderID uuid.UUID, viewer *auth.UserContext) (bool, error) {
	msg, err := s.messageRepo.GetByOrderAndRole(ctx, orderID, s.viewerRole(viewer))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get message: %w", err)
	}
	return msg.Read, nil
}

// ListForViewer returns the viewer's messages, most recent activity first.
// Back-office roles share one administration-addressed inbox; requesters see
// only messages addressed to them personally.
func (s *RelayService) ListForViewer(ctx context.Context, viewer *auth.UserContext) ([]domain.MessageDTO, error) {
	messages, err := s.messageRepo.ListForRole(ctx, s.viewerRole(viewer), s.viewerScope(viewer))
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	dtos := make([]domain.MessageDTO, 0, len(messages))
	for i := range messages {
		dtos = append(dtos, mapper.ToMessageDTO(&messages[i]))
	}
	return dtos, nil
}

// UnreadCount returns the viewer's unread message count
func (s *RelayService) UnreadCount(ctx context.Context, viewer *auth.UserContext) (int, error) {
	count, err := s.messageRepo.CountUnread(ctx, s.viewerRole(viewer), s.viewerScope(viewer))
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return int(count), nil
}

func (s *RelayService) viewerRole(viewer *auth.UserContext) domain.UserRole {
	if viewer.Role.IsBackOffice() {
		return domain.RoleAdmin
	}
	return domain.RoleRequester
}

func (s *RelayService) viewerScope(viewer *auth.UserContext) *uuid.UUID {
	if viewer.Role.IsBackOffice() {
		return nil
	}
	id := viewer.UserID
	return &id
}

// Reconcile re-derives relay rows from orders whose status changed since the
// given instant, merging by (order, role). It backfills rows a missed
// notification never created and leaves existing rows untouched, so running
// it repeatedly is safe. Returns the number of rows created.
func (s *RelayService) Reconcile(ctx context.Context, since time.Time) (int, error) {
	orders, err := s.orderRepo.ListStatusChangedSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to list changed orders: %w", err)
	}

	created := 0
	for i := range orders {
		order := &orders[i]
		// The side that authored the last transition is the sender; its
		// counterpart is the side that may be missing a message. Rows
		// stamped before the role column existed fall back to back-office
		// authorship.
		authorRole := order.StatusUpdatedByRole
		if authorRole == "" {
			authorRole = domain.RoleAdmin
		}
		recipientRole := authorRole.Counterpart()

		_, err := s.messageRepo.GetByOrderAndRole(ctx, order.ID, recipientRole)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("failed to get message: %w", err)
		}

		msg := &domain.Message{
			OrderID:       order.ID,
			RecipientRole: recipientRole,
			SenderRole:    authorRole,
			UserAction:    fmt.Sprintf("Pedido %s: %s", order.OrderNumber, order.Status),
			Read:          false,
		}
		if recipientRole == domain.RoleRequester {
			requesterID := order.RequesterID
			msg.RecipientID = &requesterID
		}
		if err := s.messageRepo.Create(ctx, msg); err != nil {
			return created, fmt.Errorf("failed to backfill message: %w", err)
		}
		created++
	}

	return created, nil
}
