package projection

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
)

// Projector folds ledger movements into warehouse balances.
//
// Apply is invoked by the ledger inside the same transaction as the append,
// so a movement and its balance update commit or roll back as one unit.
type Projector struct {
	repo Repository
}

// NewProjector creates a new stock projector.
func NewProjector(repo Repository) *Projector {
	return &Projector{repo: repo}
}

// Apply folds one movement into its balance row. Must run inside the
// transaction that appended the movement.
//
// Re-applying the movement currently recorded as LastMovementID is a no-op,
// which makes replay after a retried commit safe.
func (p *Projector) Apply(ctx context.Context, m entity.StockMovement) (entity.WarehouseBalance, error) {
	balance, err := p.repo.LockOrInit(ctx, m.SparePartID, m.WarehouseID)
	if err != nil {
		return balance, fmt.Errorf("lock balance: %w", err)
	}

	if balance.LastMovementID == m.ID {
		return balance, nil
	}

	delta := m.SignedQuantity()
	if balance.CurrentStock+delta < 0 {
		return balance, apperror.NewInsufficientStock(
			m.SparePartID.String(),
			m.WarehouseID.String(),
			m.Quantity,
			balance.CurrentStock,
		)
	}

	balance.CurrentStock += delta
	balance.LastMovementID = m.ID
	balance.UpdatedAt = time.Now().UTC()

	if err := p.repo.Save(ctx, balance); err != nil {
		return balance, fmt.Errorf("save balance: %w", err)
	}

	return balance, nil
}

// CurrentStock returns the stored balance for a (part, warehouse) pair.
// Pairs without movements read as zero.
func (p *Projector) CurrentStock(ctx context.Context, sparePartID, warehouseID id.ID) (int64, error) {
	balance, err := p.repo.Get(ctx, sparePartID, warehouseID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance.CurrentStock, nil
}

// LockBalances acquires row locks for all (sparePartID, warehouse) pairs in
// lexicographic warehouse-id order. Every multi-row writer locking through
// here acquires in the same order, which rules out circular waits between
// concurrent transfers over overlapping warehouse pairs.
// Must be called within a transaction.
func (p *Projector) LockBalances(ctx context.Context, sparePartID id.ID, warehouseIDs ...id.ID) error {
	ordered := make([]id.ID, len(warehouseIDs))
	copy(ordered, warehouseIDs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].String() < ordered[j].String()
	})

	for _, warehouseID := range ordered {
		if _, err := p.repo.LockOrInit(ctx, sparePartID, warehouseID); err != nil {
			return fmt.Errorf("lock balance %s/%s: %w", sparePartID, warehouseID, err)
		}
	}

	return nil
}

// Balances returns stored balance rows matching the filter.
func (p *Projector) Balances(ctx context.Context, filter BalanceFilter) ([]entity.WarehouseBalance, error) {
	return p.repo.List(ctx, filter)
}
