package projection_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	"fleetstock/internal/domain/domaintest"
	"fleetstock/internal/domain/projection"
)

func applied(t *testing.T, p *projection.Projector, m entity.StockMovement) entity.WarehouseBalance {
	t.Helper()
	m.ID = id.New()
	balance, err := p.Apply(context.Background(), m)
	require.NoError(t, err)
	return balance
}

func TestApply_FoldsSignedQuantities(t *testing.T) {
	store := domaintest.NewMemStore()
	projector := projection.NewProjector(store.BalanceRepo())
	part, wh := id.New(), id.New()
	now := time.Now().UTC()

	applied(t, projector, entity.NewReceipt(part, wh, 50, now, ""))
	applied(t, projector, entity.NewIssue(part, wh, 20, now, ""))
	balance := applied(t, projector, entity.NewReceipt(part, wh, 5, now, ""))

	assert.Equal(t, int64(35), balance.CurrentStock)

	stock, err := projector.CurrentStock(context.Background(), part, wh)
	require.NoError(t, err)
	assert.Equal(t, int64(35), stock)
}

func TestApply_RejectsNegativeBalance(t *testing.T) {
	store := domaintest.NewMemStore()
	projector := projection.NewProjector(store.BalanceRepo())
	part, wh := id.New(), id.New()
	now := time.Now().UTC()

	applied(t, projector, entity.NewReceipt(part, wh, 10, now, ""))

	issue := entity.NewIssue(part, wh, 15, now, "")
	issue.ID = id.New()
	_, err := projector.Apply(context.Background(), issue)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Balance untouched by the rejected movement
	stock, err := projector.CurrentStock(context.Background(), part, wh)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock)
}

func TestApply_IssueFromEmptyBalance(t *testing.T) {
	store := domaintest.NewMemStore()
	projector := projection.NewProjector(store.BalanceRepo())

	issue := entity.NewIssue(id.New(), id.New(), 1, time.Now().UTC(), "")
	issue.ID = id.New()
	_, err := projector.Apply(context.Background(), issue)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestApply_ReplayIsIdempotent(t *testing.T) {
	store := domaintest.NewMemStore()
	projector := projection.NewProjector(store.BalanceRepo())
	part, wh := id.New(), id.New()

	receipt := entity.NewReceipt(part, wh, 40, time.Now().UTC(), "")
	receipt.ID = id.New()

	first, err := projector.Apply(context.Background(), receipt)
	require.NoError(t, err)
	assert.Equal(t, int64(40), first.CurrentStock)

	// Re-applying the movement already recorded as last applied is a no-op.
	second, err := projector.Apply(context.Background(), receipt)
	require.NoError(t, err)
	assert.Equal(t, int64(40), second.CurrentStock)
}

func TestCurrentStock_UnknownPairReadsZero(t *testing.T) {
	store := domaintest.NewMemStore()
	projector := projection.NewProjector(store.BalanceRepo())

	stock, err := projector.CurrentStock(context.Background(), id.New(), id.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock)
}

func TestBalances_Filters(t *testing.T) {
	store := domaintest.NewMemStore()
	projector := projection.NewProjector(store.BalanceRepo())
	partA, partB, wh := id.New(), id.New(), id.New()
	now := time.Now().UTC()

	applied(t, projector, entity.NewReceipt(partA, wh, 10, now, ""))
	applied(t, projector, entity.NewReceipt(partB, wh, 10, now, ""))
	applied(t, projector, entity.NewIssue(partB, wh, 10, now, ""))

	all, err := projector.Balances(context.Background(), projection.BalanceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	nonZero, err := projector.Balances(context.Background(), projection.BalanceFilter{ExcludeZero: true})
	require.NoError(t, err)
	require.Len(t, nonZero, 1)
	assert.Equal(t, partA, nonZero[0].SparePartID)

	byPart, err := projector.Balances(context.Background(), projection.BalanceFilter{SparePartID: &partB})
	require.NoError(t, err)
	require.Len(t, byPart, 1)
	assert.Equal(t, int64(0), byPart[0].CurrentStock)
}
