// Package reconcile replays the ledger and surfaces projection drift.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"fleetstock/internal/core/id"
	"fleetstock/internal/core/tx"
	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/domain/projection"
	"fleetstock/pkg/logger"
)

// replayPageSize bounds memory during ledger replay.
const replayPageSize = 500

// Checker compares replayed ledger totals against stored balances.
// Drift is reported, never corrected implicitly; Repair is a separate,
// explicitly invoked administrative action.
type Checker struct {
	ledger    *ledger.Service
	balances  projection.Repository
	txManager tx.Manager
}

// NewChecker creates a new reconciliation checker.
func NewChecker(ledgerSvc *ledger.Service, balances projection.Repository, txManager tx.Manager) *Checker {
	return &Checker{
		ledger:    ledgerSvc,
		balances:  balances,
		txManager: txManager,
	}
}

// Report is the reconciliation outcome for one (part, warehouse) pair.
// Drift = Actual - Expected; zero means the projection matches the ledger.
type Report struct {
	SparePartID id.ID `json:"sparePartId"`
	WarehouseID id.ID `json:"warehouseId"`

	// Expected is the sum of signed quantities replayed from the ledger
	Expected int64 `json:"expected"`

	// Actual is the stored projection value
	Actual int64 `json:"actual"`

	Drift int64 `json:"drift"`

	MovementCount int       `json:"movementCount"`
	CheckedAt     time.Time `json:"checkedAt"`

	// Repaired is set when an explicit Repair rewrote the stored balance
	Repaired bool `json:"repaired,omitempty"`
}

// HasDrift reports whether the stored balance disagrees with the ledger.
func (r Report) HasDrift() bool {
	return r.Drift != 0
}

// Reconcile replays all movements for the pair in sequence-number order and
// compares the total against the stored balance.
func (c *Checker) Reconcile(ctx context.Context, sparePartID, warehouseID id.ID) (Report, error) {
	report, err := c.replay(ctx, sparePartID, warehouseID)
	if err != nil {
		return Report{}, err
	}

	if report.HasDrift() {
		logger.Warn(ctx, "reconciliation drift detected",
			"spare_part_id", sparePartID,
			"warehouse_id", warehouseID,
			"expected", report.Expected,
			"actual", report.Actual,
			"drift", report.Drift,
		)
	}

	return report, nil
}

// Repair resets the stored balance to the replayed total. This is the
// explicit administrative recovery path for a projection left stale by a
// failure; it is never triggered by reads.
func (c *Checker) Repair(ctx context.Context, sparePartID, warehouseID id.ID) (Report, error) {
	var report Report

	err := c.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		balance, err := c.balances.LockOrInit(ctx, sparePartID, warehouseID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		// Replay inside the transaction so the total and the stored value
		// are compared against the same committed state.
		report, err = c.replay(ctx, sparePartID, warehouseID)
		if err != nil {
			return err
		}

		if !report.HasDrift() {
			return nil
		}

		balance.CurrentStock = report.Expected
		balance.UpdatedAt = time.Now().UTC()
		if err := c.balances.Save(ctx, balance); err != nil {
			return fmt.Errorf("save balance: %w", err)
		}

		report.Repaired = true
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	if report.Repaired {
		logger.Info(ctx, "balance repaired from ledger replay",
			"spare_part_id", sparePartID,
			"warehouse_id", warehouseID,
			"previous", report.Actual,
			"restored", report.Expected,
		)
	}

	return report, nil
}

// replay folds the full ledger for a pair, page by page.
func (c *Checker) replay(ctx context.Context, sparePartID, warehouseID id.ID) (Report, error) {
	report := Report{
		SparePartID: sparePartID,
		WarehouseID: warehouseID,
		CheckedAt:   time.Now().UTC(),
	}

	filter := ledger.MovementFilter{
		SparePartID: &sparePartID,
		WarehouseID: &warehouseID,
		Limit:       replayPageSize,
	}

	for {
		page, err := c.ledger.ListMovements(ctx, filter)
		if err != nil {
			return Report{}, fmt.Errorf("list movements: %w", err)
		}

		for i := range page {
			report.Expected += page[i].SignedQuantity()
		}
		report.MovementCount += len(page)

		if len(page) < replayPageSize {
			break
		}
		filter.Offset += replayPageSize
	}

	balance, err := c.balances.Get(ctx, sparePartID, warehouseID)
	if err != nil {
		return Report{}, fmt.Errorf("get balance: %w", err)
	}

	report.Actual = balance.CurrentStock
	report.Drift = report.Actual - report.Expected
	return report, nil
}
