package repository

import (
	"context"
	"time"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings. Nil fields are ignored.
type OrderFilter struct {
	RequesterID    *uuid.UUID
	ProjectID      *uuid.UUID
	Status         *domain.OrderStatus
	IncludeDeleted bool
	Page           int
	PageSize       int
}

// OrderRepository handles database operations for orders, their lines and
// revision snapshots
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Transaction runs fn inside a database transaction. Checkout and order
// edits use this so budget checks, stock updates and order writes commit
// or roll back as one unit.
func (r *OrderRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Create persists an order with its lines
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// CreateTx persists an order inside an existing transaction
func (r *OrderRepository) CreateTx(tx *gorm.DB, order *domain.Order) error {
	return tx.Create(order).Error
}

// GetByID retrieves an order with its lines, proposal and related parties.
// Soft-deleted orders are returned too; callers decide what a deleted order
// may still do.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Proposal.Candidates", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Proposal").
		Preload("Requester").
		Preload("Project").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders matching the filter, newest first, plus the total count
func (r *OrderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Order{})
	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	err := query.
		Preload("Lines").
		Preload("Proposal.Candidates", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Proposal").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

// Update saves an existing order together with its lines
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error
}

// UpdateTx saves an order inside an existing transaction
func (r *OrderRepository) UpdateTx(tx *gorm.DB, order *domain.Order) error {
	return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error
}

// ReplaceLines deletes the current lines of an order and inserts new ones,
// inside the given transaction. Used by order edits where the requester
// rewrites the cart.
func (r *OrderRepository) ReplaceLines(tx *gorm.DB, orderID uuid.UUID, lines []domain.OrderLine) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&domain.OrderLine{}).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].OrderID = orderID
	}
	if len(lines) == 0 {
		return nil
	}
	return tx.Create(&lines).Error
}

// SumCommitted returns the total amount committed against a project:
// the sum of totals of non-deleted orders that are not denied.
// excludeOrderID, when non-nil, leaves that order out of the sum so an
// edit is judged against the budget freed by its own previous total.
func (r *OrderRepository) SumCommitted(ctx context.Context, projectID uuid.UUID, excludeOrderID *uuid.UUID) (float64, error) {
	return sumCommitted(r.db.WithContext(ctx), projectID, excludeOrderID)
}

// SumCommittedTx is SumCommitted inside an existing transaction, so the
// budget check and the order insert observe the same snapshot.
func (r *OrderRepository) SumCommittedTx(tx *gorm.DB, projectID uuid.UUID, excludeOrderID *uuid.UUID) (float64, error) {
	return sumCommitted(tx, projectID, excludeOrderID)
}

func sumCommitted(db *gorm.DB, projectID uuid.UUID, excludeOrderID *uuid.UUID) (float64, error) {
	var committed float64
	query := db.Model(&domain.Order{}).
		Where("project_id = ?", projectID).
		Where("is_deleted = ?", false)
	if excludeOrderID != nil {
		query = query.Where("id <> ?", *excludeOrderID)
	}
	err := query.Select("COALESCE(SUM(total), 0)").Scan(&committed).Error
	return committed, err
}

// MarkDeleted soft-deletes an order. The row and its history stay readable.
func (r *OrderRepository) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

// CreateRevision appends an immutable snapshot of an order's prior state
func (r *OrderRepository) CreateRevision(tx *gorm.DB, revision *domain.OrderRevision) error {
	return tx.Create(revision).Error
}

// ListRevisions returns the revision history of an order, oldest first
func (r *OrderRepository) ListRevisions(ctx context.Context, orderID uuid.UUID) ([]domain.OrderRevision, error) {
	var revisions []domain.OrderRevision
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&revisions).Error
	return revisions, err
}

// ListStatusChangedSince returns non-deleted orders whose status changed at
// or after the given instant. The relay reconciliation job polls this to
// re-derive missing messages.
func (r *OrderRepository) ListStatusChangedSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Where("status_updated_at >= ?", since).
		Order("status_updated_at ASC").
		Find(&orders).Error
	return orders, err
}
