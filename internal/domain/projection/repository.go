// Package projection maintains the current-balance view of the ledger.
package projection

import (
	"context"

	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
)

// Repository defines storage operations for warehouse balances.
type Repository interface {
	// Get returns the balance for a (part, warehouse) pair.
	// A pair that never moved reads as a zero-valued row, not an error.
	Get(ctx context.Context, sparePartID, warehouseID id.ID) (entity.WarehouseBalance, error)

	// LockOrInit creates the balance row if absent and returns it with a
	// pessimistic row lock held until the surrounding transaction ends.
	// Must be called within a transaction.
	LockOrInit(ctx context.Context, sparePartID, warehouseID id.ID) (entity.WarehouseBalance, error)

	// Save writes the balance row. The caller must hold the row lock.
	Save(ctx context.Context, balance entity.WarehouseBalance) error

	// List returns balances matching the filter, ordered by
	// (spare_part_id, warehouse_id) for stable paging.
	List(ctx context.Context, filter BalanceFilter) ([]entity.WarehouseBalance, error)
}

// BalanceFilter narrows List queries.
type BalanceFilter struct {
	SparePartID *id.ID
	WarehouseID *id.ID
	ExcludeZero bool
	Limit       int
	Offset      int
}
