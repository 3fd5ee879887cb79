package service

import (
	"context"
	"encoding/json"
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

// OrderService handles order creation, edit-and-resubmit and reads.
// Lifecycle transitions live in order_lifecycle_service.go.
type OrderService struct {
	orderRepo    *repository.OrderRepository
	sequenceRepo *repository.NumberSequenceRepository
	catalogSvc   *CatalogService
	budgetSvc    *BudgetService
	proposalSvc  *ProposalService
	relaySvc     *RelayService
	logger       *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo *repository.OrderRepository,
	sequenceRepo *repository.NumberSequenceRepository,
	catalogSvc *CatalogService,
	budgetSvc *BudgetService,
	proposalSvc *ProposalService,
	relaySvc *RelayService,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		sequenceRepo: sequenceRepo,
		catalogSvc:   catalogSvc,
		budgetSvc:    budgetSvc,
		proposalSvc:  proposalSvc,
		relaySvc:     relaySvc,
		logger:       logger,
	}
}

// resolvedLine pairs an order line with its catalog match, when one exists
type resolvedLine struct {
	line  domain.OrderLine
	item  *domain.CatalogItem
	entry *domain.CatalogEntry
}

// resolveCart matches every cart line against the catalog and applies the
// availability checks: a line belonging to a contract-inactive entry, an
// out-of-stock item, or requesting more than the available stock blocks the
// whole cart. Catalog-backed lines take the catalog price. A line carrying
// catalogItemId resolves by that reference; the rest match by name/model.
func (s *OrderService) resolveCart(ctx context.Context, lines []domain.CartLineRequest) ([]resolvedLine, error) {
	resolved := make([]resolvedLine, 0, len(lines))
	for _, req := range lines {
		kind := domain.CatalogKind(req.Kind)
		if !kind.IsValid() {
			return nil, ErrInvalidInput
		}
		if req.Quantity <= 0 {
			return nil, ErrInvalidInput
		}

		line := domain.OrderLine{
			Name:      req.Name,
			Model:     req.Model,
			Kind:      kind,
			Quantity:  req.Quantity,
			UnitPrice: req.UnitPrice,
			Currency:  "EUR",
		}
		if req.Currency != "" {
			line.Currency = req.Currency
		}
		if line.UnitPrice < 0 {
			line.UnitPrice = 0
		}

		var (
			item  *domain.CatalogItem
			entry *domain.CatalogEntry
			err   error
		)
		if req.CatalogItemID != "" {
			// Direct catalog reference; it must exist and be of the
			// line's kind.
			itemID, parseErr := uuid.Parse(req.CatalogItemID)
			if parseErr != nil {
				return nil, ErrInvalidInput
			}
			item, entry, err = s.catalogSvc.ResolveItem(ctx, itemID)
			if err != nil {
				if errors.Is(err, ErrCatalogEntryNotFound) {
					return nil, ErrInvalidInput
				}
				return nil, err
			}
			if entry.Kind != kind {
				return nil, ErrInvalidInput
			}
		} else {
			item, entry, err = s.catalogSvc.MatchLine(ctx, req.Name, req.Model, kind)
			if err != nil {
				return nil, err
			}
		}
		if item != nil {
			if !s.catalogSvc.IsPurchasable(item, entry, req.Quantity) {
				return nil, ErrCatalogUnavailable
			}
			itemID := item.ID
			line.CatalogItemID = &itemID
			line.UnitPrice = item.Price
		}
		resolved = append(resolved, resolvedLine{line: line, item: item, entry: entry})
	}
	return resolved, nil
}

// familyOf returns the order family for a group of resolved lines: regular
// when every line is catalog-backed, special otherwise
func familyOf(lines []resolvedLine) domain.OrderFamily {
	for _, rl := range lines {
		if rl.item == nil {
			return domain.FamilySpecial
		}
	}
	return domain.FamilyRegular
}

func cartTotal(lines []resolvedLine) float64 {
	var total float64
	for _, rl := range lines {
		total += rl.line.UnitPrice * float64(rl.line.Quantity)
	}
	return total
}

// Checkout commits a cart against a project. A cart mixing goods and
// services splits into one sub-order per kind; the siblings share a base
// order number with a -P / -S suffix and run their lifecycles independently.
// The budget check, stock decrements and order inserts commit as one
// transaction, so two concurrent checkouts can never both pass the check
// and overdraw the project.
func (s *OrderService) Checkout(ctx context.Context, req *domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	actor, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	if len(req.Lines) == 0 {
		return nil, ErrInvalidInput
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, ErrInvalidInput
	}

	resolved, err := s.resolveCart(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	byKind := map[domain.CatalogKind][]resolvedLine{}
	for _, rl := range resolved {
		byKind[rl.line.Kind] = append(byKind[rl.line.Kind], rl)
	}

	baseNumber, err := s.sequenceRepo.NextBaseNumber(ctx, time.Now().Year())
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.OrderPriority(req.Priority)
	}

	kindSuffix := map[domain.CatalogKind]string{
		domain.KindGoods:    "-P",
		domain.KindServices: "-S",
	}

	now := time.Now()
	var orders []*domain.Order
	err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.budgetSvc.CanCommitTx(tx, projectID, cartTotal(resolved), nil); err != nil {
			return err
		}

		for kind, group := range byKind {
			number := baseNumber
			if len(byKind) > 1 {
				number += kindSuffix[kind]
			}

			order := &domain.Order{
				OrderNumber:         number,
				Family:              familyOf(group),
				Kind:                kind,
				RequesterID:         actor.UserID,
				ProjectID:           projectID,
				Currency:            "EUR",
				Status:              domain.StatusPending,
				Priority:            priority,
				StatusUpdatedAt:     &now,
				StatusUpdatedBy:     actor.DisplayName,
				StatusUpdatedByRole: actor.Role,
			}
			for _, rl := range group {
				order.Lines = append(order.Lines, rl.line)
				if rl.item != nil {
					if err := s.catalogSvc.DecrementStockTx(tx, rl.item.ID, rl.line.Quantity); err != nil {
						return err
					}
				}
			}
			order.Total = order.LineTotal()

			if err := s.orderRepo.CreateTx(tx, order); err != nil {
				return fmt.Errorf("failed to create order: %w", err)
			}

			// Revision zero: the order as submitted
			snapshot, err := json.Marshal(mapper.ToOrderDTO(order))
			if err != nil {
				return fmt.Errorf("failed to snapshot order: %w", err)
			}
			if err := s.orderRepo.CreateRevision(tx, &domain.OrderRevision{
				OrderID:  order.ID,
				Snapshot: string(snapshot),
			}); err != nil {
				return fmt.Errorf("failed to record revision: %w", err)
			}
			orders = append(orders, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		s.relaySvc.Notify(ctx, order, actor, fmt.Sprintf("Pedido %s creado", order.OrderNumber))
		s.logger.Info("order created",
			zap.String("orderId", order.ID.String()),
			zap.String("orderNumber", order.OrderNumber),
			zap.String("family", string(order.Family)),
			zap.Float64("total", order.Total))
	}

	budget, err := s.budgetSvc.RemainingBudget(ctx, projectID, nil)
	if err != nil {
		return nil, err
	}

	dtos := make([]domain.OrderDTO, 0, len(orders))
	for _, order := range orders {
		reloaded, err := s.orderRepo.GetByID(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload order: %w", err)
		}
		dtos = append(dtos, mapper.ToOrderDTO(reloaded))
	}

	return &domain.CheckoutResponse{
		Orders:          dtos,
		RemainingBudget: budget.RemainingBudget,
	}, nil
}

// Update is the requester's edit-and-resubmit: the cart is rewritten, the
// prior state is appended to the revision history and the status returns to
// Pendiente. Stock held by the previous lines is released before the new
// lines are applied, so quantities net out instead of double-decrementing.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderRequest) (*domain.OrderDTO, error) {
	actor, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if actor.Role == domain.RoleRequester && order.RequesterID != actor.UserID {
		return nil, ErrPermissionDenied
	}
	if order.IsDeleted || order.IsTerminal() || order.Status == domain.StatusArchived {
		return nil, ErrActionNotAllowed
	}

	resolved, err := s.resolveCart(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	for _, rl := range resolved {
		if rl.line.Kind != order.Kind {
			return nil, ErrInvalidInput
		}
	}

	snapshot, err := json.Marshal(mapper.ToOrderDTO(order))
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot order: %w", err)
	}

	newTotal := cartTotal(resolved)
	now := time.Now()

	err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		orderID := order.ID
		if _, err := s.budgetSvc.CanCommitTx(tx, order.ProjectID, newTotal, &orderID); err != nil {
			return err
		}

		// Release stock held by the previous lines first
		for _, line := range order.Lines {
			if line.CatalogItemID != nil {
				if err := s.catalogSvc.RestoreStockTx(tx, *line.CatalogItemID, line.Quantity); err != nil {
					return err
				}
			}
		}
		for _, rl := range resolved {
			if rl.item != nil {
				if err := s.catalogSvc.DecrementStockTx(tx, rl.item.ID, rl.line.Quantity); err != nil {
					return err
				}
			}
		}

		if err := s.orderRepo.CreateRevision(tx, &domain.OrderRevision{
			OrderID:  order.ID,
			Snapshot: string(snapshot),
		}); err != nil {
			return fmt.Errorf("failed to append revision: %w", err)
		}

		newLines := make([]domain.OrderLine, 0, len(resolved))
		for _, rl := range resolved {
			newLines = append(newLines, rl.line)
		}
		if err := s.orderRepo.ReplaceLines(tx, order.ID, newLines); err != nil {
			return fmt.Errorf("failed to replace order lines: %w", err)
		}

		updates := map[string]interface{}{
			"total":                  newTotal,
			"status":                 domain.StatusPending,
			"denial_reason":          "",
			"status_updated_at":      now,
			"status_updated_by":      actor.DisplayName,
			"status_updated_by_role": actor.Role,
		}
		if req.Priority != "" {
			updates["priority"] = domain.OrderPriority(req.Priority)
		}
		return tx.Model(&domain.Order{}).Where("id = ?", order.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	order, err = s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	s.relaySvc.Notify(ctx, order, actor, fmt.Sprintf("Pedido %s modificado por el solicitante", order.OrderNumber))

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// Get retrieves an order. Soft-deleted orders remain readable for audit.
// Requesters only see their own orders.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	actor, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if actor.Role == domain.RoleRequester && order.RequesterID != actor.UserID {
		return nil, ErrPermissionDenied
	}

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// ProposalOptimal returns the order's proposal with the advisory optimal
// candidate index. A read, so it works on deleted orders too.
func (s *OrderService) ProposalOptimal(ctx context.Context, id uuid.UUID) (*domain.ProposalDTO, error) {
	actor, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if actor.Role == domain.RoleRequester && order.RequesterID != actor.UserID {
		return nil, ErrPermissionDenied
	}
	if order.Proposal == nil {
		return nil, ErrProposalNotFound
	}

	dto := mapper.ToProposalDTO(order.Proposal)
	return &dto, nil
}

// List returns orders visible to the caller. Requesters are scoped to their
// own orders; back-office sees everything matching the filter.
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) (*domain.PaginatedResponse, error) {
	actor, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if actor.Role == domain.RoleRequester {
		requesterID := actor.UserID
		filter.RequesterID = &requesterID
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	dtos := make([]domain.OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, mapper.ToOrderDTO(&orders[i]))
	}

	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Purge soft-deletes an order. The row stays retrievable for read-only
// audit but disappears from listings and no longer consumes project budget.
func (s *OrderService) Purge(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	actor, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if !actor.Role.IsBackOffice() {
		return nil, ErrPermissionDenied
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := s.orderRepo.MarkDeleted(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to purge order: %w", err)
	}
	order.IsDeleted = true

	s.logger.Info("order purged",
		zap.String("orderId", id.String()),
		zap.String("by", actor.DisplayName))

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// ListRevisions returns the append-only edit history of an order
func (s *OrderService) ListRevisions(ctx context.Context, id uuid.UUID) ([]domain.OrderRevision, error) {
	if _, err := s.orderRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return s.orderRepo.ListRevisions(ctx, id)
}
