package service_test

import (
	"testing"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutConsumesExactBudget(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 1000)
	ctx := userCtx(requester)

	resp, err := env.orderSvc.Checkout(ctx, &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Servicio de consultoría", Kind: "servicios", Quantity: 2, UnitPrice: 500},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, float64(1000), resp.Orders[0].Total)
	assert.Equal(t, float64(0), resp.RemainingBudget)

	budget, err := env.budgetSvc.RemainingBudget(ctx, project.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(1000), budget.CommittedBudget)
	assert.Equal(t, float64(0), budget.RemainingBudget)
}

func TestCheckoutRejectsCartOverBudget(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 100)
	ctx := userCtx(requester)

	_, err := env.orderSvc.Checkout(ctx, &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Portátil", Kind: "productos", Quantity: 1, UnitPrice: 100.01},
		},
	})
	assert.ErrorIs(t, err, service.ErrBudgetExceeded)

	// The failed checkout must not leave a partial order behind
	var count int64
	require.NoError(t, env.db.Model(&domain.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDeniedOrdersStillConsumeBudget(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 500)
	ctx := userCtx(requester)

	resp, err := env.orderSvc.Checkout(ctx, &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Material de oficina", Kind: "productos", Quantity: 1, UnitPrice: 500},
		},
	})
	require.NoError(t, err)
	orderID := resp.Orders[0].ID

	// Budget fully committed
	_, err = env.orderSvc.Checkout(ctx, &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Silla", Kind: "productos", Quantity: 1, UnitPrice: 1},
		},
	})
	require.ErrorIs(t, err, service.ErrBudgetExceeded)

	_, err = env.orderSvc.Deny(userCtx(admin), orderID, &domain.DenyOrderRequest{
		Reason: domain.DenialNoBudget,
	})
	require.NoError(t, err)

	// Denial does not free the committed total; only the order being
	// edited is ever excluded from the sum.
	budget, err := env.budgetSvc.RemainingBudget(ctx, project.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(500), budget.CommittedBudget)
	assert.Equal(t, float64(0), budget.RemainingBudget)

	_, err = env.orderSvc.Checkout(ctx, &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Silla", Kind: "productos", Quantity: 1, UnitPrice: 1},
		},
	})
	require.ErrorIs(t, err, service.ErrBudgetExceeded)
}

func TestEditExcludesOwnOrderFromBudget(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 300)
	ctx := userCtx(requester)

	resp, err := env.orderSvc.Checkout(ctx, &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Monitor", Kind: "productos", Quantity: 1, UnitPrice: 300},
		},
	})
	require.NoError(t, err)
	orderID := resp.Orders[0].ID

	// Resubmitting at the same total must pass even though the project is
	// fully committed, because the order's own prior total is excluded.
	updated, err := env.orderSvc.Update(ctx, orderID, &domain.UpdateOrderRequest{
		Lines: []domain.CartLineRequest{
			{Name: "Monitor grande", Kind: "productos", Quantity: 1, UnitPrice: 300},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(300), updated.Total)

	_, err = env.orderSvc.Update(ctx, orderID, &domain.UpdateOrderRequest{
		Lines: []domain.CartLineRequest{
			{Name: "Monitor enorme", Kind: "productos", Quantity: 1, UnitPrice: 301},
		},
	})
	assert.ErrorIs(t, err, service.ErrBudgetExceeded)
}

func TestRemainingBudgetUnknownProject(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)

	_, err := env.budgetSvc.RemainingBudget(userCtx(requester), uuid.New(), nil)
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}
