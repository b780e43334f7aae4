// Package domaintest provides an in-memory store implementing the ledger and
// projection repositories plus the transaction manager, for unit tests that
// need transactional semantics without a database.
package domaintest

import (
	"context"
	"sort"
	"sync"
	"time"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	"fleetstock/internal/core/tx"
	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/domain/projection"
)

// MemStore holds movements and balances in memory. RunInTransaction snapshots
// state on the outermost call and restores it when the callback fails, which
// mirrors the rollback behavior of the real transaction manager; nested calls
// join the ambient unit the same way nested database transactions do.
//
// LedgerRepo and BalanceRepo expose the two repository views over the shared
// state.
type MemStore struct {
	mu        sync.Mutex
	movements []entity.StockMovement
	balances  map[balanceKey]entity.WarehouseBalance
	depth     int

	snapMovements []entity.StockMovement
	snapBalances  map[balanceKey]entity.WarehouseBalance
}

type balanceKey struct {
	sparePartID id.ID
	warehouseID id.ID
}

var _ tx.Manager = (*MemStore)(nil)

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		balances: make(map[balanceKey]entity.WarehouseBalance),
	}
}

// LedgerRepo returns the movement repository view.
func (s *MemStore) LedgerRepo() ledger.Repository {
	return &memLedger{s}
}

// BalanceRepo returns the balance repository view.
func (s *MemStore) BalanceRepo() projection.Repository {
	return &memBalances{s}
}

// RunInTransaction executes fn, restoring pre-call state if it fails.
// Only the outermost call snapshots; nested calls join the outer unit.
func (s *MemStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.depth == 0 {
		s.snapMovements = append([]entity.StockMovement(nil), s.movements...)
		s.snapBalances = make(map[balanceKey]entity.WarehouseBalance, len(s.balances))
		for k, v := range s.balances {
			s.snapBalances[k] = v
		}
	}
	s.depth++
	s.mu.Unlock()

	err := fn(ctx)

	s.mu.Lock()
	s.depth--
	if s.depth == 0 && err != nil {
		s.movements = s.snapMovements
		s.balances = s.snapBalances
	}
	s.mu.Unlock()

	return err
}

// MovementCount returns the number of stored movements.
func (s *MemStore) MovementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

// SetBalance overwrites a stored balance directly, bypassing the projector.
// Used to simulate drift in reconciliation tests.
func (s *MemStore) SetBalance(balance entity.WarehouseBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[balanceKey{balance.SparePartID, balance.WarehouseID}] = balance
}

// --- ledger.Repository view ---

type memLedger struct {
	store *MemStore
}

var _ ledger.Repository = (*memLedger)(nil)

// Insert appends a movement, rejecting duplicate sequence numbers.
func (l *memLedger) Insert(ctx context.Context, m *entity.StockMovement) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	for i := range l.store.movements {
		if l.store.movements[i].SequenceNumber == m.SequenceNumber {
			return apperror.NewDuplicateSequence(m.SequenceNumber)
		}
	}

	l.store.movements = append(l.store.movements, *m)
	return nil
}

// List returns movements matching the filter in sequence number order.
func (l *memLedger) List(ctx context.Context, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	var matched []entity.StockMovement
	for i := range l.store.movements {
		if matchesMovement(&l.store.movements[i], filter) {
			matched = append(matched, l.store.movements[i])
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SequenceNumber < matched[j].SequenceNumber
	})

	return paginate(matched, filter.Limit, filter.Offset), nil
}

// GetByID returns a single movement.
func (l *memLedger) GetByID(ctx context.Context, movementID id.ID) (entity.StockMovement, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	for i := range l.store.movements {
		if l.store.movements[i].ID == movementID {
			return l.store.movements[i], nil
		}
	}
	return entity.StockMovement{}, apperror.NewNotFound("movement", movementID)
}

// --- projection.Repository view ---

type memBalances struct {
	store *MemStore
}

var _ projection.Repository = (*memBalances)(nil)

// Get returns the stored balance, or a zero-valued row for unseen pairs.
func (b *memBalances) Get(ctx context.Context, sparePartID, warehouseID id.ID) (entity.WarehouseBalance, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	if balance, ok := b.store.balances[balanceKey{sparePartID, warehouseID}]; ok {
		return balance, nil
	}
	return entity.WarehouseBalance{
		SparePartID:    sparePartID,
		WarehouseID:    warehouseID,
		LastMovementID: id.Nil(),
	}, nil
}

// LockOrInit creates the row if absent. Row locking is a no-op in memory.
func (b *memBalances) LockOrInit(ctx context.Context, sparePartID, warehouseID id.ID) (entity.WarehouseBalance, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	key := balanceKey{sparePartID, warehouseID}
	if balance, ok := b.store.balances[key]; ok {
		return balance, nil
	}

	balance := entity.WarehouseBalance{
		SparePartID:    sparePartID,
		WarehouseID:    warehouseID,
		LastMovementID: id.Nil(),
		UpdatedAt:      time.Now().UTC(),
	}
	b.store.balances[key] = balance
	return balance, nil
}

// Save writes the balance row.
func (b *memBalances) Save(ctx context.Context, balance entity.WarehouseBalance) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	b.store.balances[balanceKey{balance.SparePartID, balance.WarehouseID}] = balance
	return nil
}

// List returns balances ordered by (spare_part_id, warehouse_id).
func (b *memBalances) List(ctx context.Context, filter projection.BalanceFilter) ([]entity.WarehouseBalance, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	var matched []entity.WarehouseBalance
	for _, balance := range b.store.balances {
		if filter.SparePartID != nil && balance.SparePartID != *filter.SparePartID {
			continue
		}
		if filter.WarehouseID != nil && balance.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.ExcludeZero && balance.CurrentStock == 0 {
			continue
		}
		matched = append(matched, balance)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SparePartID != matched[j].SparePartID {
			return matched[i].SparePartID.String() < matched[j].SparePartID.String()
		}
		return matched[i].WarehouseID.String() < matched[j].WarehouseID.String()
	})

	return paginate(matched, filter.Limit, filter.Offset), nil
}

func matchesMovement(m *entity.StockMovement, filter ledger.MovementFilter) bool {
	if filter.SparePartID != nil && m.SparePartID != *filter.SparePartID {
		return false
	}
	if filter.WarehouseID != nil && m.WarehouseID != *filter.WarehouseID {
		return false
	}
	if filter.Kind != nil && m.Kind != *filter.Kind {
		return false
	}
	if filter.CorrelationID != nil {
		if m.CorrelationID == nil || *m.CorrelationID != *filter.CorrelationID {
			return false
		}
	}
	if filter.From != nil && m.OccurredAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && !m.OccurredAt.Before(*filter.To) {
		return false
	}
	return true
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
