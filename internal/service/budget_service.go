package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BudgetService derives project budget figures from the orders referencing
// the project. Consumption is never stored; every figure is recomputed from
// order totals so the ledger cannot drift.
type BudgetService struct {
	projectRepo *repository.ProjectRepository
	orderRepo   *repository.OrderRepository
	logger      *zap.Logger
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(projectRepo *repository.ProjectRepository, orderRepo *repository.OrderRepository, logger *zap.Logger) *BudgetService {
	return &BudgetService{
		projectRepo: projectRepo,
		orderRepo:   orderRepo,
		logger:      logger,
	}
}

// RemainingBudget returns the project's budget figures. Every live order
// consumes budget regardless of status; only soft-deleted orders drop out.
// editingOrderID, when non-nil, is excluded so an edit is judged against
// the budget its previous total would free. A negative remainder is
// clamped to zero for display.
func (s *BudgetService) RemainingBudget(ctx context.Context, projectID uuid.UUID, editingOrderID *uuid.UUID) (*domain.RemainingBudgetDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	committed, err := s.orderRepo.SumCommitted(ctx, projectID, editingOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum committed orders: %w", err)
	}

	remaining := project.Budget - committed
	if remaining < 0 {
		remaining = 0
	}
	return &domain.RemainingBudgetDTO{
		ProjectID:       projectID,
		Budget:          project.Budget,
		CommittedBudget: committed,
		RemainingBudget: remaining,
	}, nil
}

// CanCommitTx checks, inside the commit transaction, whether a cart of the
// given total may be committed against a project: the project must exist
// and the committed total plus the cart total must not exceed its budget.
// Catalog availability checks run before this in the checkout path.
// Running the check and the subsequent order insert in one transaction
// closes the check-then-act gap between them.
func (s *BudgetService) CanCommitTx(tx *gorm.DB, projectID uuid.UUID, total float64, editingOrderID *uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	if err := tx.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if total < 0 {
		total = 0
	}

	committed, err := s.orderRepo.SumCommittedTx(tx, projectID, editingOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum committed orders: %w", err)
	}
	if committed+total > project.Budget {
		s.logger.Info("budget check rejected cart",
			zap.String("projectId", projectID.String()),
			zap.Float64("budget", project.Budget),
			zap.Float64("committed", committed),
			zap.Float64("cartTotal", total))
		return nil, ErrBudgetExceeded
	}

	return &project, nil
}
