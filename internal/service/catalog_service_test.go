package service_test

import (
	"context"
	"testing"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntryDerivesAvailability(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	dto, err := env.catalogSvc.CreateEntry(ctx, &domain.CreateCatalogEntryRequest{
		Company:     "acme",
		CompanyName: "Acme S.L.",
		Kind:        "productos",
		Items: []domain.CreateCatalogItemRequest{
			{Name: "Portátil", Model: "X1", Price: 900, Stock: 5},
			{Name: "Dock", Price: 120, Stock: 0},
		},
	})
	require.NoError(t, err)
	assert.True(t, dto.ContractActive)
	require.Len(t, dto.Items, 2)
	assert.Equal(t, domain.AvailabilityInStock, dto.Items[0].Availability)
	assert.Equal(t, domain.AvailabilityOutOfStock, dto.Items[1].Availability)
}

func TestListEntriesFilteredByKind(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Portátil", Price: 900, Stock: 5, Availability: domain.AvailabilityInStock})
	env.createCatalog(t, "limpio", domain.KindServices,
		domain.CatalogItem{Name: "Limpieza", Price: 300, Stock: 99, Availability: domain.AvailabilityInStock})

	all, err := env.catalogSvc.ListEntries(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	kind := domain.KindServices
	services, err := env.catalogSvc.ListEntries(ctx, &kind)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "limpio", services[0].Company)
}

func TestMatchLine(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	entry := env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Portátil", Model: "X1", Price: 900, Stock: 5, Availability: domain.AvailabilityInStock})

	// Name match is case-insensitive
	item, matched, err := env.catalogSvc.MatchLine(ctx, "PORTÁTIL", "X1", domain.KindGoods)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, entry.ID, matched.ID)

	// Wrong model, wrong kind or unknown name all mean ad-hoc
	item, _, err = env.catalogSvc.MatchLine(ctx, "Portátil", "X9", domain.KindGoods)
	require.NoError(t, err)
	assert.Nil(t, item)

	item, _, err = env.catalogSvc.MatchLine(ctx, "Portátil", "X1", domain.KindServices)
	require.NoError(t, err)
	assert.Nil(t, item)

	item, _, err = env.catalogSvc.MatchLine(ctx, "Tostadora", "", domain.KindGoods)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestIsPurchasable(t *testing.T) {
	env := setupEnv(t)
	item := &domain.CatalogItem{Stock: 3, Availability: domain.AvailabilityInStock}
	entry := &domain.CatalogEntry{ContractActive: true}

	assert.True(t, env.catalogSvc.IsPurchasable(item, entry, 3))
	assert.False(t, env.catalogSvc.IsPurchasable(item, entry, 4))

	entry.ContractActive = false
	assert.False(t, env.catalogSvc.IsPurchasable(item, entry, 1))

	entry.ContractActive = true
	item.Availability = domain.AvailabilityOutOfStock
	assert.False(t, env.catalogSvc.IsPurchasable(item, entry, 1))
}

func TestStockAccountingFlipsAvailability(t *testing.T) {
	env := setupEnv(t)
	entry := env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Teclado", Price: 50, Stock: 2, Availability: domain.AvailabilityInStock})
	itemID := entry.Items[0].ID

	require.NoError(t, env.catalogSvc.DecrementStockTx(env.db, itemID, 2))

	var item domain.CatalogItem
	require.NoError(t, env.db.First(&item, "id = ?", itemID).Error)
	assert.Equal(t, 0, item.Stock)
	assert.Equal(t, domain.AvailabilityOutOfStock, item.Availability)

	err := env.catalogSvc.DecrementStockTx(env.db, itemID, 1)
	assert.ErrorIs(t, err, service.ErrCatalogUnavailable)

	require.NoError(t, env.catalogSvc.RestoreStockTx(env.db, itemID, 2))
	require.NoError(t, env.db.First(&item, "id = ?", itemID).Error)
	assert.Equal(t, 2, item.Stock)
	assert.Equal(t, domain.AvailabilityInStock, item.Availability)
}

func TestSetContractActive(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	entry := env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Teclado", Price: 50, Stock: 5, Availability: domain.AvailabilityInStock})

	dto, err := env.catalogSvc.SetContractActive(ctx, entry.ID, false)
	require.NoError(t, err)
	assert.False(t, dto.ContractActive)

	dto, err = env.catalogSvc.SetContractActive(ctx, entry.ID, true)
	require.NoError(t, err)
	assert.True(t, dto.ContractActive)
}
