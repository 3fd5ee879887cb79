package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/mapper"
	"github.com/Jox86/sipp-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService handles catalog registration, availability resolution and
// stock accounting
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(catalogRepo *repository.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// CreateEntry registers a supplier catalog with its items
func (s *CatalogService) CreateEntry(ctx context.Context, req *domain.CreateCatalogEntryRequest) (*domain.CatalogEntryDTO, error) {
	entry := &domain.CatalogEntry{
		Company:        req.Company,
		CompanyName:    req.CompanyName,
		Kind:           domain.CatalogKind(req.Kind),
		ContractActive: true,
	}
	if req.ContractActive != nil {
		entry.ContractActive = *req.ContractActive
	}
	for _, item := range req.Items {
		availability := domain.AvailabilityInStock
		if item.Stock <= 0 {
			availability = domain.AvailabilityOutOfStock
		}
		entry.Items = append(entry.Items, domain.CatalogItem{
			Name:         item.Name,
			Model:        item.Model,
			Price:        item.Price,
			Stock:        item.Stock,
			Availability: availability,
		})
	}

	if err := s.catalogRepo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create catalog entry: %w", err)
	}

	s.logger.Info("catalog entry created",
		zap.String("company", entry.Company),
		zap.String("kind", string(entry.Kind)),
		zap.Int("items", len(entry.Items)))

	dto := mapper.ToCatalogEntryDTO(entry)
	return &dto, nil
}

// GetEntry retrieves a catalog entry by id
func (s *CatalogService) GetEntry(ctx context.Context, id uuid.UUID) (*domain.CatalogEntryDTO, error) {
	entry, err := s.catalogRepo.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCatalogEntryNotFound
		}
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}
	dto := mapper.ToCatalogEntryDTO(entry)
	return &dto, nil
}

// ListEntries returns all catalog entries, optionally filtered by kind
func (s *CatalogService) ListEntries(ctx context.Context, kind *domain.CatalogKind) ([]domain.CatalogEntryDTO, error) {
	entries, err := s.catalogRepo.ListEntries(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	dtos := make([]domain.CatalogEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, mapper.ToCatalogEntryDTO(&entries[i]))
	}
	return dtos, nil
}

// SetContractActive toggles a supplier contract on or off. An inactive
// contract makes every item in the entry unpurchasable regardless of stock.
func (s *CatalogService) SetContractActive(ctx context.Context, id uuid.UUID, active bool) (*domain.CatalogEntryDTO, error) {
	entry, err := s.catalogRepo.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCatalogEntryNotFound
		}
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}

	entry.ContractActive = active
	if err := s.catalogRepo.UpdateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update catalog entry: %w", err)
	}

	dto := mapper.ToCatalogEntryDTO(entry)
	return &dto, nil
}

// MatchLine resolves a cart line against the catalog by name/model.
// A nil item with nil error means the line is ad-hoc (not catalog-backed).
func (s *CatalogService) MatchLine(ctx context.Context, name, model string, kind domain.CatalogKind) (*domain.CatalogItem, *domain.CatalogEntry, error) {
	item, entry, err := s.catalogRepo.FindItem(ctx, name, model, kind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to match catalog line: %w", err)
	}
	return item, entry, nil
}

// ResolveItem loads a catalog item and its owning entry by item id, for cart
// lines that reference the catalog directly instead of matching by name.
func (s *CatalogService) ResolveItem(ctx context.Context, itemID uuid.UUID) (*domain.CatalogItem, *domain.CatalogEntry, error) {
	item, err := s.catalogRepo.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCatalogEntryNotFound
		}
		return nil, nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	entry, err := s.catalogRepo.GetEntryByID(ctx, item.EntryID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}
	return item, entry, nil
}

// IsPurchasable reports whether a matched catalog item can be ordered in the
// given quantity: the supplier contract must be active, the item available
// and the stock sufficient.
func (s *CatalogService) IsPurchasable(item *domain.CatalogItem, entry *domain.CatalogEntry, quantity int) bool {
	if !entry.ContractActive {
		return false
	}
	if item.Availability == domain.AvailabilityOutOfStock {
		return false
	}
	return item.Stock >= quantity
}

// DecrementStockTx reduces an item's stock inside a transaction and flips
// availability to out-of-stock when it reaches zero. Stock never goes
// negative; insufficient stock is an error.
func (s *CatalogService) DecrementStockTx(tx *gorm.DB, itemID uuid.UUID, quantity int) error {
	var item domain.CatalogItem
	if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
		return fmt.Errorf("failed to load catalog item for stock decrement: %w", err)
	}
	if item.Stock < quantity {
		return ErrCatalogUnavailable
	}
	item.Stock -= quantity
	if item.Stock == 0 {
		item.Availability = domain.AvailabilityOutOfStock
	}
	return tx.Save(&item).Error
}

// RestoreStockTx returns quantity to an item's stock inside a transaction,
// flipping availability back to in-stock when it rises above zero. Used when
// an order edit releases previously committed quantities.
func (s *CatalogService) RestoreStockTx(tx *gorm.DB, itemID uuid.UUID, quantity int) error {
	var item domain.CatalogItem
	if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
		return fmt.Errorf("failed to load catalog item for stock restore: %w", err)
	}
	item.Stock += quantity
	if item.Stock > 0 {
		item.Availability = domain.AvailabilityInStock
	}
	return tx.Save(&item).Error
}
