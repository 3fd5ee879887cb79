package service_test

import (
	"testing"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func (e *testEnv) checkoutAdHoc(t *testing.T, requester *domain.User, project *domain.Project, kind string, price float64) domain.OrderDTO {
	t.Helper()
	resp, err := e.orderSvc.Checkout(userCtx(requester), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Encargo a medida", Kind: kind, Quantity: 1, UnitPrice: price},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	return resp.Orders[0]
}

func TestSelectionFlow(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 10000)
	env.createCatalog(t, "acme", domain.KindGoods,
		domain.CatalogItem{Name: "Portátil", Price: 800, Stock: 10, Availability: domain.AvailabilityInStock},
		domain.CatalogItem{Name: "Monitor", Price: 200, Stock: 10, Availability: domain.AvailabilityInStock},
	)

	resp, err := env.orderSvc.Checkout(userCtx(requester), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Portátil", Kind: "productos", Quantity: 1, UnitPrice: 800},
			{Name: "Monitor", Kind: "productos", Quantity: 1, UnitPrice: 200},
		},
	})
	require.NoError(t, err)
	order := resp.Orders[0]
	require.Equal(t, domain.FamilyRegular, order.Family)
	require.Len(t, order.Lines, 2)

	// Rejecting a line without a reason is invalid
	_, err = env.orderSvc.SelectItems(userCtx(admin), order.ID, &domain.SelectItemsRequest{
		Selections: []domain.LineSelectionRequest{
			{LineID: order.Lines[0].ID.String(), Selected: false},
		},
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	modified, err := env.orderSvc.SelectItems(userCtx(admin), order.ID, &domain.SelectItemsRequest{
		Selections: []domain.LineSelectionRequest{
			{LineID: order.Lines[0].ID.String(), Selected: true},
			{LineID: order.Lines[1].ID.String(), Selected: false, RejectionReason: "Sin stock en almacén central"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusModified, modified.Status)
	assert.Equal(t, admin.DisplayName, modified.StatusUpdatedBy)

	// Only the requester who owns the order may respond
	other := env.createUser(t, domain.RoleRequester)
	_, err = env.orderSvc.RespondToSelection(userCtx(other), order.ID, &domain.RespondSelectionRequest{
		Selections: []domain.LineSelectionRequest{
			{LineID: order.Lines[0].ID.String(), Selected: true},
		},
	})
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	responded, err := env.orderSvc.RespondToSelection(userCtx(requester), order.ID, &domain.RespondSelectionRequest{
		Selections: []domain.LineSelectionRequest{
			{LineID: order.Lines[0].ID.String(), Selected: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResponded, responded.Status)
}

func TestSendProposalBlockedForCatalogServiceOrder(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 10000)
	env.createCatalog(t, "limpio", domain.KindServices,
		domain.CatalogItem{Name: "Limpieza mensual", Price: 300, Stock: 99, Availability: domain.AvailabilityInStock},
	)

	resp, err := env.orderSvc.Checkout(userCtx(requester), &domain.CheckoutRequest{
		ProjectID: project.ID.String(),
		Lines: []domain.CartLineRequest{
			{Name: "Limpieza mensual", Kind: "servicios", Quantity: 1, UnitPrice: 300},
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.FamilyRegular, resp.Orders[0].Family)

	_, err = env.orderSvc.SendProposal(userCtx(admin), resp.Orders[0].ID, &domain.SendProposalRequest{
		TotalBudget: 300,
		Candidates: []domain.ProposalCandidateRequest{
			{Company: "Limpio S.L.", Budget: floatPtr(300)},
		},
	})
	assert.ErrorIs(t, err, service.ErrActionNotAllowed)
}

func TestProposalFlowAccept(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 10000)
	order := env.checkoutAdHoc(t, requester, project, "servicios", 2000)

	// A proposal without candidates is incomplete
	_, err := env.orderSvc.SendProposal(userCtx(admin), order.ID, &domain.SendProposalRequest{TotalBudget: 2000})
	require.ErrorIs(t, err, service.ErrIncompleteProposal)

	sent, err := env.orderSvc.SendProposal(userCtx(admin), order.ID, &domain.SendProposalRequest{
		TotalBudget: 1800,
		Candidates: []domain.ProposalCandidateRequest{
			{Company: "Alfa S.A.", Budget: floatPtr(1900), Tariff: "Tarifa estándar"},
			{Company: "Beta S.L.", Budget: floatPtr(1800), Tariff: "Tarifa recomendada"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProposalSent, sent.Status)
	assert.Equal(t, float64(1800), sent.Total)
	require.NotNil(t, sent.Proposal)
	assert.Equal(t, 1, sent.Proposal.OptimalIndex)

	// Accepting a multi-candidate proposal without choosing is rejected
	_, err = env.orderSvc.RespondToProposal(userCtx(requester), order.ID, &domain.RespondProposalRequest{Accept: true})
	require.ErrorIs(t, err, service.ErrCandidateRequired)

	accepted, err := env.orderSvc.RespondToProposal(userCtx(requester), order.ID, &domain.RespondProposalRequest{
		Accept:         true,
		CandidateIndex: intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResponded, accepted.Status)

	reloaded := env.reloadOrder(t, order.ID)
	require.NotNil(t, reloaded.Proposal)
	assert.Equal(t, "Alfa S.A.", reloaded.Proposal.ChosenCompany)
	require.NotNil(t, reloaded.Proposal.Accepted)
	assert.True(t, *reloaded.Proposal.Accepted)

	// A responded proposal is immutable
	_, err = env.orderSvc.RespondToProposal(userCtx(requester), order.ID, &domain.RespondProposalRequest{Accept: true, CandidateIndex: intPtr(0)})
	assert.ErrorIs(t, err, service.ErrActionNotAllowed)
}

func TestProposalRejectDeniesOrderAndFlagsBackOffice(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 10000)
	order := env.checkoutAdHoc(t, requester, project, "servicios", 2000)

	_, err := env.orderSvc.SendProposal(userCtx(admin), order.ID, &domain.SendProposalRequest{
		TotalBudget: 1500,
		Candidates: []domain.ProposalCandidateRequest{
			{Company: "Gamma S.L.", Budget: floatPtr(1500)},
		},
	})
	require.NoError(t, err)

	adminCtx := userCtx(admin)
	_, err = env.relaySvc.MarkRead(adminCtx, order.ID, viewer(admin))
	require.NoError(t, err)

	denied, err := env.orderSvc.RespondToProposal(userCtx(requester), order.ID, &domain.RespondProposalRequest{Accept: false})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDenied, denied.Status)
	assert.Equal(t, domain.DenialRejectedByUser, denied.DenialReason)

	// The rejection flips the back-office message back to unread
	read, err := env.relaySvc.IsRead(adminCtx, order.ID, viewer(admin))
	require.NoError(t, err)
	assert.False(t, read)
}

func TestDenyReasons(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 10000)

	order := env.checkoutAdHoc(t, requester, project, "productos", 100)
	adminCtx := userCtx(admin)

	_, err := env.orderSvc.Deny(adminCtx, order.ID, &domain.DenyOrderRequest{Reason: "porque sí"})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = env.orderSvc.Deny(adminCtx, order.ID, &domain.DenyOrderRequest{Reason: domain.DenialOther})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	denied, err := env.orderSvc.Deny(adminCtx, order.ID, &domain.DenyOrderRequest{
		Reason:     domain.DenialOther,
		FreeReason: "Proveedor sancionado",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDenied, denied.Status)
	assert.Equal(t, "Proveedor sancionado", denied.DenialReason)
}

func TestCompleteReturnsFixedNotice(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 10000)
	order := env.checkoutAdHoc(t, requester, project, "productos", 100)

	resp, err := env.orderSvc.Complete(userCtx(admin), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, resp.Order.Status)
	assert.Equal(t, domain.CompletionNotice, resp.Notice)
}

func TestArchiveAndUnarchive(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	manager := env.createUser(t, domain.RoleManager)
	project := env.createProject(t, requester, 10000)
	order := env.checkoutAdHoc(t, requester, project, "productos", 100)

	// Requesters cannot archive
	_, err := env.orderSvc.Archive(userCtx(requester), order.ID)
	require.ErrorIs(t, err, service.ErrPermissionDenied)

	archived, err := env.orderSvc.Archive(userCtx(manager), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, archived.Status)

	_, err = env.orderSvc.Archive(userCtx(manager), order.ID)
	require.ErrorIs(t, err, service.ErrActionNotAllowed)

	restored, err := env.orderSvc.Unarchive(userCtx(manager), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, restored.Status)
}

func TestArchiveDeletedOrderNotAllowed(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 10000)
	order := env.checkoutAdHoc(t, requester, project, "productos", 100)

	_, err := env.orderSvc.Purge(userCtx(admin), order.ID)
	require.NoError(t, err)

	_, err = env.orderSvc.Archive(userCtx(admin), order.ID)
	assert.ErrorIs(t, err, service.ErrActionNotAllowed)
}

func TestSetManualStatus(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 10000)
	order := env.checkoutAdHoc(t, requester, project, "productos", 100)
	adminCtx := userCtx(admin)

	_, err := env.orderSvc.SetManualStatus(adminCtx, order.ID, domain.StatusDenied)
	require.ErrorIs(t, err, service.ErrInvalidInput)

	dto, err := env.orderSvc.SetManualStatus(adminCtx, order.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, dto.Status)
}
