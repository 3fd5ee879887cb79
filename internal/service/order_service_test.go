package service_test

import (
	"strings"
	"testing"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/repository"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutSplitsMixedCart(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 10000)
	ctx := userCtx(requester)

	resp, err := env.orderSvc.Checkout(ctx, &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Portátil", Kind: "productos", Quantity: 2, UnitPrice: 800},
			{Name: "Instalación de red", Kind: "servicios", Quantity: 1, UnitPrice: 1200},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 2)

	byKind := map[domain.CatalogKind]domain.OrderDTO{}
	for _, o := range resp.Orders {
		byKind[o.Kind] = o
	}
	goods, ok := byKind[domain.KindGoods]
	require.True(t, ok)
	services, ok := byKind[domain.KindServices]
	require.True(t, ok)

	// Siblings share the base number with a kind suffix
	assert.True(t, strings.HasSuffix(goods.OrderNumber, "-P"), "goods number %q", goods.OrderNumber)
	assert.True(t, strings.HasSuffix(services.OrderNumber, "-S"), "services number %q", services.OrderNumber)
	assert.Equal(t,
		strings.TrimSuffix(goods.OrderNumber, "-P"),
		strings.TrimSuffix(services.OrderNumber, "-S"))

	assert.Equal(t, float64(1600), goods.Total)
	assert.Equal(t, float64(1200), services.Total)
	assert.Equal(t, domain.StatusPending, goods.Status)
	assert.Equal(t, domain.StatusPending, services.Status)
}

func TestCheckoutSingleKindHasNoSuffix(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 10000)

	resp, err := env.orderSvc.Checkout(userCtx(requester), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Silla", Kind: "productos", Quantity: 1, UnitPrice: 100},
			{Name: "Mesa", Kind: "productos", Quantity: 1, UnitPrice: 200},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Regexp(t, `^PED-\d{4}-\d{4}$`, resp.Orders[0].OrderNumber)
}

func TestCheckoutMatchesCatalogAndDecrementsStock(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 10000)
	entry := env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Portátil", Model: "X1", Price: 900, Stock: 5, Availability: domain.AvailabilityInStock},
	)

	resp, err := env.orderSvc.Checkout(userCtx(requester), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			// Catalog price wins over the submitted one
			{Name: "portátil", Model: "X1", Kind: "productos", Quantity: 3, UnitPrice: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)

	order := resp.Orders[0]
	assert.Equal(t, domain.FamilyRegular, order.Family)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, float64(900), order.Lines[0].UnitPrice)
	require.NotNil(t, order.Lines[0].CatalogItemID)
	assert.Equal(t, entry.Items[0].ID, *order.Lines[0].CatalogItemID)

	var item domain.CatalogItem
	require.NoError(t, env.db.First(&item, "id = ?", entry.Items[0].ID).Error)
	assert.Equal(t, 2, item.Stock)
	assert.Equal(t, domain.AvailabilityInStock, item.Availability)
}

func TestCheckoutBlockedByStockAndContract(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 10000)
	entry := env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Teclado", Price: 50, Stock: 1, Availability: domain.AvailabilityInStock},
	)
	ctx := userCtx(requester)

	_, err := env.orderSvc.Checkout(ctx, &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Teclado", Kind: "productos", Quantity: 2, UnitPrice: 50},
		},
	})
	assert.ErrorIs(t, err, service.ErrCatalogUnavailable)

	// An inactive contract blocks the item regardless of stock
	require.NoError(t, env.db.Model(&domain.CatalogEntry{}).Where("id = ?", entry.ID).Update("contract_active", false).Error)
	_, err = env.orderSvc.Checkout(ctx, &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Teclado", Kind: "productos", Quantity: 1, UnitPrice: 50},
		},
	})
	assert.ErrorIs(t, err, service.ErrCatalogUnavailable)
}

func TestCheckoutUnmatchedLinesMakeSpecialOrder(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 10000)
	env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Teclado", Price: 50, Stock: 10, Availability: domain.AvailabilityInStock},
	)

	resp, err := env.orderSvc.Checkout(userCtx(requester), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Teclado", Kind: "productos", Quantity: 1, UnitPrice: 50},
			{Name: "Grabadora de vídeo submarina", Kind: "productos", Quantity: 1, UnitPrice: 2000},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, domain.FamilySpecial, resp.Orders[0].Family)
}

func TestUpdateNetsStockAndRecordsRevision(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 10000)
	entry := env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Ratón", Price: 20, Stock: 10, Availability: domain.AvailabilityInStock},
	)
	ctx := userCtx(requester)

	resp, err := env.orderSvc.Checkout(ctx, &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Ratón", Kind: "productos", Quantity: 6, UnitPrice: 20},
		},
	})
	require.NoError(t, err)
	orderID := resp.Orders[0].ID

	// Editing down to 2 units releases the other 4
	updated, err := env.orderSvc.Update(ctx, orderID, &domain.UpdateOrderRequest{
		Lines: []domain.CartLineRequest{
			{Name: "Ratón", Kind: "productos", Quantity: 2, UnitPrice: 20},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(40), updated.Total)
	assert.Equal(t, domain.StatusPending, updated.Status)

	var item domain.CatalogItem
	require.NoError(t, env.db.First(&item, "id = ?", entry.Items[0].ID).Error)
	assert.Equal(t, 8, item.Stock)

	// Revision zero from checkout plus the pre-edit snapshot
	revisions, err := env.orderSvc.ListRevisions(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Contains(t, revisions[0].Snapshot, resp.Orders[0].OrderNumber)
	assert.Contains(t, revisions[1].Snapshot, `"quantity":6`)
}

func TestUpdateForbiddenForOtherRequester(t *testing.T) {
	env := setupEnv(t)
	owner := env.createUser(t, domain.RoleRequester)
	other := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, owner, 1000)

	resp, err := env.orderSvc.Checkout(userCtx(owner), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Lámpara", Kind: "productos", Quantity: 1, UnitPrice: 30},
		},
	})
	require.NoError(t, err)

	_, err = env.orderSvc.Update(userCtx(other), resp.Orders[0].ID, &domain.UpdateOrderRequest{
		Lines: []domain.CartLineRequest{
			{Name: "Lámpara", Kind: "productos", Quantity: 2, UnitPrice: 30},
		},
	})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestPurgeHidesOrderButKeepsItReadable(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 1000)

	resp, err := env.orderSvc.Checkout(userCtx(requester), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Impresora", Kind: "productos", Quantity: 1, UnitPrice: 400},
		},
	})
	require.NoError(t, err)
	orderID := resp.Orders[0].ID

	// Requesters cannot purge
	_, err = env.orderSvc.Purge(userCtx(requester), orderID)
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	purged, err := env.orderSvc.Purge(userCtx(admin), orderID)
	require.NoError(t, err)
	assert.True(t, purged.IsDeleted)

	// Still readable, gone from listings, no longer consumes budget
	got, err := env.orderSvc.Get(userCtx(admin), orderID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)

	list, err := env.orderSvc.List(userCtx(admin), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), list.Total)

	budget, err := env.budgetSvc.RemainingBudget(userCtx(requester), project.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(0), budget.CommittedBudget)
}

func TestCheckoutHonorsCatalogItemReference(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 10000)
	entry := env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Portátil", Model: "X1", Price: 900, Stock: 5, Availability: domain.AvailabilityInStock},
	)
	itemID := entry.Items[0].ID

	// The reference wins even when the submitted name matches nothing
	resp, err := env.orderSvc.Checkout(userCtx(requester), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{CatalogItemID: itemID.String(), Name: "Equipo informático", Kind: "productos", Quantity: 2, UnitPrice: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)

	order := resp.Orders[0]
	assert.Equal(t, domain.FamilyRegular, order.Family)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, float64(900), order.Lines[0].UnitPrice)
	require.NotNil(t, order.Lines[0].CatalogItemID)
	assert.Equal(t, itemID, *order.Lines[0].CatalogItemID)

	var item domain.CatalogItem
	require.NoError(t, env.db.First(&item, "id = ?", itemID).Error)
	assert.Equal(t, 3, item.Stock)
}

func TestCheckoutRejectsBadCatalogItemReference(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 10000)
	entry := env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Portátil", Model: "X1", Price: 900, Stock: 5, Availability: domain.AvailabilityInStock},
	)

	// Unknown reference
	_, err := env.orderSvc.Checkout(userCtx(requester), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{CatalogItemID: uuid.New().String(), Name: "Portátil", Kind: "productos", Quantity: 1, UnitPrice: 1},
		},
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	// Kind mismatch between the referenced item and the line
	_, err = env.orderSvc.Checkout(userCtx(requester), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{CatalogItemID: entry.Items[0].ID.String(), Name: "Portátil", Kind: "servicios", Quantity: 1, UnitPrice: 1},
		},
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)
}
