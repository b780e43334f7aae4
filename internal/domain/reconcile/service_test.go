package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	"fleetstock/internal/core/numbering"
	"fleetstock/internal/domain/domaintest"
	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/domain/projection"
	"fleetstock/internal/domain/reconcile"
)

type fixture struct {
	store     *domaintest.MemStore
	projector *projection.Projector
	ledger    *ledger.Service
	checker   *reconcile.Checker
}

func newFixture() *fixture {
	store := domaintest.NewMemStore()
	projector := projection.NewProjector(store.BalanceRepo())
	ledgerSvc := ledger.NewService(store.LedgerRepo(), projector, numbering.NewMockGenerator(), store)
	return &fixture{
		store:     store,
		projector: projector,
		ledger:    ledgerSvc,
		checker:   reconcile.NewChecker(ledgerSvc, store.BalanceRepo(), store),
	}
}

func (f *fixture) append(t *testing.T, m entity.StockMovement) {
	t.Helper()
	_, err := f.ledger.Append(context.Background(), m)
	require.NoError(t, err)
}

// corrupt overwrites the stored balance, simulating a projection left stale
// by an operational failure.
func (f *fixture) corrupt(t *testing.T, part, wh id.ID, value int64) {
	t.Helper()
	f.store.SetBalance(entity.WarehouseBalance{
		SparePartID:  part,
		WarehouseID:  wh,
		CurrentStock: value,
		UpdatedAt:    time.Now().UTC(),
	})
}

func TestReconcile_CleanBalanceHasNoDrift(t *testing.T) {
	f := newFixture()
	part, wh := id.New(), id.New()
	now := time.Now().UTC()

	f.append(t, entity.NewReceipt(part, wh, 50, now, ""))
	f.append(t, entity.NewIssue(part, wh, 20, now, ""))

	report, err := f.checker.Reconcile(context.Background(), part, wh)
	require.NoError(t, err)

	assert.False(t, report.HasDrift())
	assert.Equal(t, int64(30), report.Expected)
	assert.Equal(t, int64(30), report.Actual)
	assert.Equal(t, 2, report.MovementCount)
	assert.False(t, report.Repaired)
}

func TestReconcile_ReportsExactDiscrepancy(t *testing.T) {
	f := newFixture()
	part, wh := id.New(), id.New()
	now := time.Now().UTC()

	f.append(t, entity.NewReceipt(part, wh, 100, now, ""))
	f.corrupt(t, part, wh, 93)

	report, err := f.checker.Reconcile(context.Background(), part, wh)
	require.NoError(t, err)

	assert.True(t, report.HasDrift())
	assert.Equal(t, int64(100), report.Expected)
	assert.Equal(t, int64(93), report.Actual)
	assert.Equal(t, int64(-7), report.Drift)

	// Reconcile reports; it never writes.
	stock, err := f.projector.CurrentStock(context.Background(), part, wh)
	require.NoError(t, err)
	assert.Equal(t, int64(93), stock)
}

func TestRepair_RestoresBalanceFromLedger(t *testing.T) {
	f := newFixture()
	part, wh := id.New(), id.New()
	now := time.Now().UTC()

	f.append(t, entity.NewReceipt(part, wh, 60, now, ""))
	f.append(t, entity.NewIssue(part, wh, 10, now, ""))
	f.corrupt(t, part, wh, 999)

	report, err := f.checker.Repair(context.Background(), part, wh)
	require.NoError(t, err)

	assert.True(t, report.Repaired)
	assert.Equal(t, int64(50), report.Expected)

	stock, err := f.projector.CurrentStock(context.Background(), part, wh)
	require.NoError(t, err)
	assert.Equal(t, int64(50), stock)
}

func TestRepair_CleanBalanceIsUntouched(t *testing.T) {
	f := newFixture()
	part, wh := id.New(), id.New()

	f.append(t, entity.NewReceipt(part, wh, 25, time.Now().UTC(), ""))

	report, err := f.checker.Repair(context.Background(), part, wh)
	require.NoError(t, err)

	assert.False(t, report.Repaired)
	assert.False(t, report.HasDrift())
}

func TestReconcile_EmptyPairIsClean(t *testing.T) {
	f := newFixture()

	report, err := f.checker.Reconcile(context.Background(), id.New(), id.New())
	require.NoError(t, err)

	assert.False(t, report.HasDrift())
	assert.Equal(t, 0, report.MovementCount)
	assert.Equal(t, int64(0), report.Expected)
}

func TestReconcile_ReplayPagesThroughLongHistory(t *testing.T) {
	f := newFixture()
	part, wh := id.New(), id.New()
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	// More movements than one replay page (500) to force paging.
	f.append(t, entity.NewReceipt(part, wh, 1000, day, "opening"))
	for i := 0; i < 520; i++ {
		f.append(t, entity.NewIssue(part, wh, 1, day.Add(time.Duration(i)*time.Minute), ""))
	}

	report, err := f.checker.Reconcile(context.Background(), part, wh)
	require.NoError(t, err)

	assert.Equal(t, 521, report.MovementCount)
	assert.Equal(t, int64(480), report.Expected)
	assert.False(t, report.HasDrift())
}
