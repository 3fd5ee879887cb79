package service_test

import (
	"testing"
	"time"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayNotifiesCounterpartOnCheckout(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 1000)

	order := env.checkoutAdHoc(t, requester, project, "productos", 100)
	ctx := userCtx(admin)

	// The requester's action lands in the shared back-office inbox, unread
	count, err := env.relaySvc.UnreadCount(ctx, viewer(admin))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	messages, err := env.relaySvc.ListForViewer(ctx, viewer(admin))
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, order.ID, messages[0].OrderID)
	assert.Contains(t, messages[0].UserAction, order.OrderNumber)
	assert.False(t, messages[0].Read)

	// Commercial and manager roles share the same inbox
	commercial := env.createUser(t, domain.RoleCommercial)
	count, err = env.relaySvc.UnreadCount(userCtx(commercial), viewer(commercial))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRelayIsReadDefaultsFalse(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 1000)
	order := env.checkoutAdHoc(t, requester, project, "productos", 100)

	// No requester-side row exists yet; unread is the default answer
	read, err := env.relaySvc.IsRead(userCtx(requester), order.ID, viewer(requester))
	require.NoError(t, err)
	assert.False(t, read)
}

func TestRelayMarkReadIsIdempotent(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 1000)
	order := env.checkoutAdHoc(t, requester, project, "productos", 100)
	ctx := userCtx(admin)

	first, err := env.relaySvc.MarkRead(ctx, order.ID, viewer(admin))
	require.NoError(t, err)
	assert.True(t, first.Read)
	assert.Equal(t, admin.DisplayName, first.ReadBy)

	second, err := env.relaySvc.MarkRead(ctx, order.ID, viewer(admin))
	require.NoError(t, err)
	assert.True(t, second.Read)
	assert.Equal(t, first.ReadAt, second.ReadAt)

	unread, err := env.relaySvc.MarkUnread(ctx, order.ID, viewer(admin))
	require.NoError(t, err)
	assert.False(t, unread.Read)
	assert.Empty(t, unread.ReadBy)
}

func TestRelayMarkReadWithoutMessage(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, requester, 1000)
	order := env.checkoutAdHoc(t, requester, project, "productos", 100)

	// Checkout notifies back-office only; the requester has no row
	_, err := env.relaySvc.MarkRead(userCtx(requester), order.ID, viewer(requester))
	assert.ErrorIs(t, err, service.ErrMessageNotFound)
}

func TestRelayCrossRoleActionFlipsUnread(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 1000)
	order := env.checkoutAdHoc(t, requester, project, "productos", 100)

	// An admin action creates the requester-side message
	_, err := env.orderSvc.Deny(userCtx(admin), order.ID, &domain.DenyOrderRequest{Reason: domain.DenialNoBudget})
	require.NoError(t, err)

	reqCtx := userCtx(requester)
	count, err := env.relaySvc.UnreadCount(reqCtx, viewer(requester))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = env.relaySvc.MarkRead(reqCtx, order.ID, viewer(requester))
	require.NoError(t, err)

	// Requesters see only their own messages
	other := env.createUser(t, domain.RoleRequester)
	count, err = env.relaySvc.UnreadCount(userCtx(other), viewer(other))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRelayReconcileBackfillsRequesterSide(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 1000)
	order := env.checkoutAdHoc(t, requester, project, "productos", 100)

	_, err := env.orderSvc.Complete(userCtx(admin), order.ID)
	require.NoError(t, err)

	// Simulate a missed notification
	require.NoError(t, env.db.Where("recipient_role = ?", domain.RoleRequester).Delete(&domain.Message{}).Error)

	since := time.Now().Add(-time.Minute)
	created, err := env.relaySvc.Reconcile(userCtx(admin), since)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	read, err := env.relaySvc.IsRead(userCtx(requester), order.ID, viewer(requester))
	require.NoError(t, err)
	assert.False(t, read)

	// A second pass finds nothing missing
	created, err = env.relaySvc.Reconcile(userCtx(admin), since)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestRelayReconcileFollowsAuthoringSide(t *testing.T) {
	env := setupEnv(t)
	requester := env.createUser(t, domain.RoleRequester)
	admin := env.createUser(t, domain.RoleAdmin)
	project := env.createProject(t, requester, 1000)
	order := env.checkoutAdHoc(t, requester, project, "productos", 100)

	// Creation stamps the status change, so a fresh order is visible to
	// the reconciler even before any back-office action.
	stored := env.reloadOrder(t, order.ID)
	require.NotNil(t, stored.StatusUpdatedAt)
	assert.Equal(t, domain.RoleRequester, stored.StatusUpdatedByRole)

	// Simulate the checkout notification never reaching the back-office
	require.NoError(t, env.db.Where("order_id = ?", order.ID).Delete(&domain.Message{}).Error)

	since := time.Now().Add(-time.Minute)
	created, err := env.relaySvc.Reconcile(userCtx(admin), since)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// The requester authored the last transition, so the backfilled row
	// addresses the back-office, not the requester.
	count, err := env.relaySvc.UnreadCount(userCtx(admin), viewer(admin))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var requesterRows int64
	require.NoError(t, env.db.Model(&domain.Message{}).
		Where("order_id = ? AND recipient_role = ?", order.ID, domain.RoleRequester).
		Count(&requesterRows).Error)
	assert.Equal(t, int64(0), requesterRows)
}
