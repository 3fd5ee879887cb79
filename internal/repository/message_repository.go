package repository

import (
	"context"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepository handles database operations for the cross-role message
// relay. At most one row exists per (order, recipient role); the unique
// index enforces it.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a new message row
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// GetByOrderAndRole retrieves the single message for an order addressed to a
// role, or gorm.ErrRecordNotFound when none exists yet
func (r *MessageRepository) GetByOrderAndRole(ctx context.Context, orderID uuid.UUID, role domain.UserRole) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.WithContext(ctx).
		First(&msg, "order_id = ? AND recipient_role = ?", orderID, role).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Update saves an existing message row
func (r *MessageRepository) Update(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Save(msg).Error
}

// ListForRole returns messages addressed to a role, newest activity first.
// For requesters the listing is additionally scoped to the recipient user.
func (r *MessageRepository) ListForRole(ctx context.Context, role domain.UserRole, recipientID *uuid.UUID) ([]domain.Message, error) {
	var messages []domain.Message
	query := r.db.WithContext(ctx).Where("recipient_role = ?", role)
	if recipientID != nil {
		query = query.Where("recipient_id = ?", *recipientID)
	}
	err := query.Order("updated_at DESC").Find(&messages).Error
	return messages, err
}

// CountUnread returns the number of unread messages for a role, optionally
// scoped to one recipient user
func (r *MessageRepository) CountUnread(ctx context.Context, role domain.UserRole, recipientID *uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("recipient_role = ? AND read = ?", role, false)
	if recipientID != nil {
		query = query.Where("recipient_id = ?", *recipientID)
	}
	err := query.Count(&count).Error
	return count, err
}

// ListByOrder returns all message rows attached to an order
func (r *MessageRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&messages).Error
	return messages, err
}
