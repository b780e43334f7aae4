package ledger_test

import (
	"context"
	"errors"
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
)

func newService(store *domaintest.MemStore, sequencer numbering.Generator) *ledger.Service {
	projector := projection.NewProjector(store.BalanceRepo())
	return ledger.NewService(store.LedgerRepo(), projector, sequencer, store)
}

func TestAppend_AssignsIdentityAndSequence(t *testing.T) {
	store := domaintest.NewMemStore()
	svc := newService(store, numbering.NewMockGenerator())
	part, wh := id.New(), id.New()
	occurred := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	movement, err := svc.Append(context.Background(), entity.NewReceipt(part, wh, 25, occurred, "po 1001"))
	require.NoError(t, err)

	assert.False(t, id.IsNil(movement.ID))
	assert.False(t, movement.CreatedAt.IsZero())

	wantScope := numbering.ScopeKey(wh, occurred)
	assert.Equal(t, numbering.DefaultConfig().Format(wantScope, 1), movement.SequenceNumber)

	stored, err := svc.GetMovement(context.Background(), movement.ID)
	require.NoError(t, err)
	assert.Equal(t, movement, stored)
}

func TestAppend_UpdatesBalanceAtomically(t *testing.T) {
	store := domaintest.NewMemStore()
	projector := projection.NewProjector(store.BalanceRepo())
	svc := ledger.NewService(store.LedgerRepo(), projector, numbering.NewMockGenerator(), store)
	part, wh := id.New(), id.New()
	now := time.Now().UTC()

	_, err := svc.Append(context.Background(), entity.NewReceipt(part, wh, 100, now, ""))
	require.NoError(t, err)
	_, err = svc.Append(context.Background(), entity.NewIssue(part, wh, 30, now, ""))
	require.NoError(t, err)

	stock, err := projector.CurrentStock(context.Background(), part, wh)
	require.NoError(t, err)
	assert.Equal(t, int64(70), stock)
	assert.Equal(t, 2, store.MovementCount())
}

func TestAppend_InvalidDraftRejectedBeforeNumbering(t *testing.T) {
	store := domaintest.NewMemStore()
	sequencer := numbering.NewMockGenerator()
	svc := newService(store, sequencer)
	wh := id.New()
	occurred := time.Now().UTC()

	_, err := svc.Append(context.Background(), entity.NewReceipt(id.Nil(), wh, 5, occurred, ""))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidMovement))

	// Validation failures must not burn sequence numbers.
	assert.Equal(t, int64(0), sequencer.Issued(numbering.ScopeKey(wh, occurred)))
	assert.Equal(t, 0, store.MovementCount())
}

func TestAppend_NumberingFailureLeavesNoTrace(t *testing.T) {
	store := domaintest.NewMemStore()
	sequencer := numbering.NewMockGenerator()
	sequencer.FailWith(apperror.NewNumberingUnavailable(errors.New("connection refused")))
	svc := newService(store, sequencer)

	_, err := svc.Append(context.Background(), entity.NewReceipt(id.New(), id.New(), 5, time.Now().UTC(), ""))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNumberingUnavailable))
	assert.Equal(t, 0, store.MovementCount())
}

func TestAppend_InsufficientStockRollsBackLedgerEntry(t *testing.T) {
	store := domaintest.NewMemStore()
	svc := newService(store, numbering.NewMockGenerator())
	part, wh := id.New(), id.New()
	now := time.Now().UTC()

	_, err := svc.Append(context.Background(), entity.NewIssue(part, wh, 10, now, ""))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The insert and the projection share one transaction: a failed
	// projection must take the ledger row down with it.
	assert.Equal(t, 0, store.MovementCount())
}

func TestAppend_DuplicateSequenceSurfacesConflict(t *testing.T) {
	store := domaintest.NewMemStore()
	sequencer := numbering.NewMockGenerator()
	sequencer.NextFunc = func(context.Context, string) (string, error) {
		return "MV-stuck-000001", nil
	}
	svc := newService(store, sequencer)
	part, wh := id.New(), id.New()
	now := time.Now().UTC()

	_, err := svc.Append(context.Background(), entity.NewReceipt(part, wh, 5, now, ""))
	require.NoError(t, err)

	_, err = svc.Append(context.Background(), entity.NewReceipt(part, wh, 5, now, ""))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicateSequence))
	assert.Equal(t, 1, store.MovementCount())
}

func TestListMovements_FiltersAndOrder(t *testing.T) {
	store := domaintest.NewMemStore()
	svc := newService(store, numbering.NewMockGenerator())
	part, whA, whB := id.New(), id.New(), id.New()
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := svc.Append(context.Background(), entity.NewReceipt(part, whA, 10, day.AddDate(0, 0, i), ""))
		require.NoError(t, err)
	}
	_, err := svc.Append(context.Background(), entity.NewReceipt(part, whB, 10, day, ""))
	require.NoError(t, err)

	byWarehouse, err := svc.ListMovements(context.Background(), ledger.MovementFilter{WarehouseID: &whA})
	require.NoError(t, err)
	require.Len(t, byWarehouse, 3)
	for i := 1; i < len(byWarehouse); i++ {
		assert.Less(t, byWarehouse[i-1].SequenceNumber, byWarehouse[i].SequenceNumber)
	}

	// Date range: inclusive from, exclusive to.
	from := day.AddDate(0, 0, 1)
	to := day.AddDate(0, 0, 2)
	ranged, err := svc.ListMovements(context.Background(), ledger.MovementFilter{
		WarehouseID: &whA,
		From:        &from,
		To:          &to,
	})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.True(t, ranged[0].OccurredAt.Equal(from))
}
