package repository

import (
	"context"
	"strings"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository handles database operations for catalog entries and items
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateEntry persists a catalog entry together with its items
func (r *CatalogRepository) CreateEntry(ctx context.Context, entry *domain.CatalogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetEntryByID retrieves a catalog entry with its items
func (r *CatalogRepository) GetEntryByID(ctx context.Context, id uuid.UUID) (*domain.CatalogEntry, error) {
	var entry domain.CatalogEntry
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetEntryByCompany retrieves the entry of a given kind for a company
func (r *CatalogRepository) GetEntryByCompany(ctx context.Context, company string, kind domain.CatalogKind) (*domain.CatalogEntry, error) {
	var entry domain.CatalogEntry
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&entry, "company = ? AND kind = ?", company, kind).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns catalog entries, optionally filtered by kind.
// Items are always preloaded since the catalog view renders them inline.
func (r *CatalogRepository) ListEntries(ctx context.Context, kind *domain.CatalogKind) ([]domain.CatalogEntry, error) {
	var entries []domain.CatalogEntry
	query := r.db.WithContext(ctx).Preload("Items")
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	err := query.Order("company ASC").Find(&entries).Error
	return entries, err
}

// UpdateEntry saves an existing catalog entry
func (r *CatalogRepository) UpdateEntry(ctx context.Context, entry *domain.CatalogEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// FindItem matches an order line against the catalog by name and model.
// Matching is case-insensitive; model only participates when the line
// carries one. Returns gorm.ErrRecordNotFound for unknown items.
func (r *CatalogRepository) FindItem(ctx context.Context, name, model string, kind domain.CatalogKind) (*domain.CatalogItem, *domain.CatalogEntry, error) {
	var entries []domain.CatalogEntry
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("kind = ?", kind).
		Find(&entries).Error
	if err != nil {
		return nil, nil, err
	}

	name = strings.ToLower(strings.TrimSpace(name))
	model = strings.ToLower(strings.TrimSpace(model))

	for i := range entries {
		for j := range entries[i].Items {
			item := &entries[i].Items[j]
			if strings.ToLower(item.Name) != name {
				continue
			}
			if model != "" && strings.ToLower(item.Model) != model {
				continue
			}
			return item, &entries[i], nil
		}
	}
	return nil, nil, gorm.ErrRecordNotFound
}

// GetItemByID retrieves a single catalog item
func (r *CatalogRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem saves stock and availability changes on a catalog item
func (r *CatalogRepository) UpdateItem(ctx context.Context, item *domain.CatalogItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// UpdateItemTx saves a catalog item inside an existing transaction
func (r *CatalogRepository) UpdateItemTx(tx *gorm.DB, item *domain.CatalogItem) error {
	return tx.Save(item).Error
}
