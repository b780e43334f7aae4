package dto

import (
	"time"

	"fleetstock/internal/core/entity"
	"fleetstock/internal/domain/reconcile"
)

// BalanceResponse mirrors one warehouse balance row.
type BalanceResponse struct {
	SparePartID  string    `json:"sparePartId"`
	WarehouseID  string    `json:"warehouseId"`
	CurrentStock int64     `json:"currentStock"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromBalance converts a balance entity to its response shape.
func FromBalance(b entity.WarehouseBalance) BalanceResponse {
	return BalanceResponse{
		SparePartID:  b.SparePartID.String(),
		WarehouseID:  b.WarehouseID.String(),
		CurrentStock: b.CurrentStock,
		UpdatedAt:    b.UpdatedAt,
	}
}

// ReconcileRequest is the body of POST /reconciliation.
type ReconcileRequest struct {
	SparePartID string `json:"sparePartId" binding:"required"`
	WarehouseID string `json:"warehouseId" binding:"required"`

	// Repair resets the stored balance to the replayed total.
	// Off by default: drift is reported, not corrected.
	Repair bool `json:"repair,omitempty"`
}

// ReconcileResponse mirrors a reconciliation report.
type ReconcileResponse struct {
	SparePartID   string    `json:"sparePartId"`
	WarehouseID   string    `json:"warehouseId"`
	Expected      int64     `json:"expected"`
	Actual        int64     `json:"actual"`
	Drift         int64     `json:"drift"`
	MovementCount int       `json:"movementCount"`
	CheckedAt     time.Time `json:"checkedAt"`
	Repaired      bool      `json:"repaired,omitempty"`
}

// FromReport converts a reconciliation report to its response shape.
func FromReport(r reconcile.Report) ReconcileResponse {
	return ReconcileResponse{
		SparePartID:   r.SparePartID.String(),
		WarehouseID:   r.WarehouseID.String(),
		Expected:      r.Expected,
		Actual:        r.Actual,
		Drift:         r.Drift,
		MovementCount: r.MovementCount,
		CheckedAt:     r.CheckedAt,
		Repaired:      r.Repaired,
	}
}
