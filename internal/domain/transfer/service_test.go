package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	"fleetstock/internal/core/numbering"
	"fleetstock/internal/domain/domaintest"
	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/domain/projection"
	"fleetstock/internal/domain/transfer"
)

type fixture struct {
	store       *domaintest.MemStore
	projector   *projection.Projector
	ledger      *ledger.Service
	coordinator *transfer.Coordinator
}

func newFixture() *fixture {
	store := domaintest.NewMemStore()
	projector := projection.NewProjector(store.BalanceRepo())
	ledgerSvc := ledger.NewService(store.LedgerRepo(), projector, numbering.NewMockGenerator(), store)
	return &fixture{
		store:       store,
		projector:   projector,
		ledger:      ledgerSvc,
		coordinator: transfer.NewCoordinator(ledgerSvc, projector, store),
	}
}

func (f *fixture) stock(t *testing.T, part, wh id.ID) int64 {
	t.Helper()
	stock, err := f.projector.CurrentStock(context.Background(), part, wh)
	require.NoError(t, err)
	return stock
}

func (f *fixture) receive(t *testing.T, part, wh id.ID, qty int64) {
	t.Helper()
	_, err := f.ledger.Append(context.Background(), entity.NewReceipt(part, wh, qty, time.Now().UTC(), ""))
	require.NoError(t, err)
}

func TestTransfer_MovesStockBetweenWarehouses(t *testing.T) {
	f := newFixture()
	part, from, to := id.New(), id.New(), id.New()
	f.receive(t, part, from, 100)

	result, err := f.coordinator.Transfer(context.Background(), part, from, to, 30, "restock")
	require.NoError(t, err)

	assert.Equal(t, entity.KindTransferOut, result.Out.Kind)
	assert.Equal(t, entity.KindTransferIn, result.In.Kind)
	assert.Equal(t, int64(30), result.Out.Quantity)
	assert.Equal(t, int64(30), result.In.Quantity)

	// Both sides share one correlation id and mirror warehouses.
	assert.False(t, id.IsNil(result.CorrelationID()))
	require.NotNil(t, result.In.CorrelationID)
	assert.Equal(t, result.CorrelationID(), *result.In.CorrelationID)
	require.NotNil(t, result.Out.CounterpartWarehouseID)
	assert.Equal(t, to, *result.Out.CounterpartWarehouseID)
	require.NotNil(t, result.In.CounterpartWarehouseID)
	assert.Equal(t, from, *result.In.CounterpartWarehouseID)

	assert.Equal(t, int64(70), f.stock(t, part, from))
	assert.Equal(t, int64(30), f.stock(t, part, to))
}

func TestTransfer_BothSidesQueryableByCorrelation(t *testing.T) {
	f := newFixture()
	part, from, to := id.New(), id.New(), id.New()
	f.receive(t, part, from, 50)

	result, err := f.coordinator.Transfer(context.Background(), part, from, to, 10, "")
	require.NoError(t, err)

	correlationID := result.CorrelationID()
	pair, err := f.ledger.ListMovements(context.Background(), ledger.MovementFilter{CorrelationID: &correlationID})
	require.NoError(t, err)
	assert.Len(t, pair, 2)
}

func TestTransfer_InsufficientSourceLeavesNothing(t *testing.T) {
	f := newFixture()
	part, from, to := id.New(), id.New(), id.New()
	f.receive(t, part, from, 20)
	before := f.store.MovementCount()

	_, err := f.coordinator.Transfer(context.Background(), part, from, to, 25, "")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// No half-applied transfer: neither side exists, balances untouched.
	assert.Equal(t, before, f.store.MovementCount())
	assert.Equal(t, int64(20), f.stock(t, part, from))
	assert.Equal(t, int64(0), f.stock(t, part, to))
}

func TestTransfer_PreconditionRejections(t *testing.T) {
	f := newFixture()
	part, from, to := id.New(), id.New(), id.New()
	f.receive(t, part, from, 10)

	tests := []struct {
		name string
		call func() error
	}{
		{"same warehouse", func() error {
			_, err := f.coordinator.Transfer(context.Background(), part, from, from, 5, "")
			return err
		}},
		{"zero quantity", func() error {
			_, err := f.coordinator.Transfer(context.Background(), part, from, to, 0, "")
			return err
		}},
		{"negative quantity", func() error {
			_, err := f.coordinator.Transfer(context.Background(), part, from, to, -5, "")
			return err
		}},
		{"nil spare part", func() error {
			_, err := f.coordinator.Transfer(context.Background(), id.Nil(), from, to, 5, "")
			return err
		}},
		{"nil target warehouse", func() error {
			_, err := f.coordinator.Transfer(context.Background(), part, from, id.Nil(), 5, "")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeInvalidMovement), "expected INVALID_MOVEMENT, got %v", err)
		})
	}

	// None of the rejected calls may have written movements.
	assert.Equal(t, 1, f.store.MovementCount())
}

func TestTransfer_ExactBalanceDrainsSource(t *testing.T) {
	f := newFixture()
	part, from, to := id.New(), id.New(), id.New()
	f.receive(t, part, from, 15)

	_, err := f.coordinator.Transfer(context.Background(), part, from, to, 15, "")
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.stock(t, part, from))
	assert.Equal(t, int64(15), f.stock(t, part, to))
}
