package entity

import (
	"time"

	"fleetstock/internal/core/id"
)

// WarehouseBalance is the current-stock projection: one row per
// (spare part, warehouse) pair, maintained in lock-step with the ledger.
// Its CurrentStock always equals the sum of signed quantities of all
// movements for the pair; drift between the two is a defect surfaced by
// reconciliation, never silently corrected.
type WarehouseBalance struct {
	// Dimensions
	SparePartID id.ID `db:"spare_part_id" json:"sparePartId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// CurrentStock is non-negative by construction
	CurrentStock int64 `db:"current_stock" json:"currentStock"`

	// LastMovementID is the most recent movement folded into this balance.
	// Used for idempotent replay: re-applying that movement is a no-op.
	LastMovementID id.ID `db:"last_movement_id" json:"lastMovementId"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
