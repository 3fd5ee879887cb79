package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/Jox86/sipp-api/internal/auth"
	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/repository"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.CatalogEntry{},
		&domain.CatalogItem{},
		&domain.Order{},
		&domain.OrderLine{},
		&domain.Proposal{},
		&domain.ProposalCandidate{},
		&domain.Message{},
		&domain.OrderRevision{},
		&domain.NumberSequence{},
	)
	require.NoError(t, err)

	return db
}

type testEnv struct {
	db         *gorm.DB
	orderSvc   *service.OrderService
	catalogSvc *service.CatalogService
	budgetSvc  *service.BudgetService
	projectSvc *service.ProjectService
	relaySvc   *service.RelayService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)

	catalogSvc := service.NewCatalogService(catalogRepo, log)
	budgetSvc := service.NewBudgetService(projectRepo, orderRepo, log)
	relaySvc := service.NewRelayService(messageRepo, orderRepo, log)
	proposalSvc := service.NewProposalService()
	orderSvc := service.NewOrderService(orderRepo, sequenceRepo, catalogSvc, budgetSvc, proposalSvc, relaySvc, log)
	projectSvc := service.NewProjectService(projectRepo, orderRepo, userRepo, log)

	return &testEnv{
		db:         db,
		orderSvc:   orderSvc,
		catalogSvc: catalogSvc,
		budgetSvc:  budgetSvc,
		projectSvc: projectSvc,
		relaySvc:   relaySvc,
	}
}

func (e *testEnv) createUser(t *testing.T, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:       fmt.Sprintf("%s-%s@test.local", role, uuid.NewString()[:8]),
		DisplayName: "Test " + string(role),
		Role:        role,
		IsActive:    true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createProject(t *testing.T, owner *domain.User, budget float64) *domain.Project {
	t.Helper()
	project := &domain.Project{
		Name:          "Proyecto " + uuid.NewString()[:8],
		OwnerID:       owner.ID,
		Budget:        budget,
		ProjectNumber: "PRJ-" + uuid.NewString()[:8],
		Status:        domain.ProjectStatusActive,
	}
	require.NoError(t, e.db.Create(project).Error)
	return project
}

func (e *testEnv) createCatalog(t *testing.T, company string, kind domain.CatalogKind, items ...domain.CatalogItem) *domain.CatalogEntry {
	t.Helper()
	entry := &domain.CatalogEntry{
		Company:        company,
		CompanyName:    company + " S.L.",
		Kind:           kind,
		ContractActive: true,
		Items:          items,
	}
	require.NoError(t, e.db.Create(entry).Error)
	return entry
}

func viewer(user *domain.User) *auth.UserContext {
	return &auth.UserContext{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
	}
}

func userCtx(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), viewer(user))
}

func (e *testEnv) reloadOrder(t *testing.T, id uuid.UUID) *domain.Order {
	t.Helper()
	var order domain.Order
	require.NoError(t, e.db.Preload("Lines").Preload("Proposal.Candidates").Preload("Proposal").First(&order, "id = ?", id).Error)
	return &order
}
