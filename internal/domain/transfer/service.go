// Package transfer builds and commits two-sided warehouse transfers.
package transfer

import (
	"context"
	"time"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	"fleetstock/internal/core/tx"
	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/domain/projection"
	"fleetstock/pkg/logger"
)

// Coordinator commits the TRANSFER_OUT/TRANSFER_IN pair of a warehouse
// transfer as one atomic unit. A transfer is observable either as fully
// applied or not applied, never half-applied.
type Coordinator struct {
	ledger    *ledger.Service
	projector *projection.Projector
	txManager tx.Manager
}

// NewCoordinator creates a new transfer coordinator.
func NewCoordinator(ledgerSvc *ledger.Service, projector *projection.Projector, txManager tx.Manager) *Coordinator {
	return &Coordinator{
		ledger:    ledgerSvc,
		projector: projector,
		txManager: txManager,
	}
}

// Result holds the two committed sides of a transfer.
type Result struct {
	Out entity.StockMovement `json:"out"`
	In  entity.StockMovement `json:"in"`
}

// CorrelationID returns the id shared by both sides.
func (r Result) CorrelationID() id.ID {
	if r.Out.CorrelationID != nil {
		return *r.Out.CorrelationID
	}
	return id.Nil()
}

// Transfer moves quantity of a spare part between two warehouses.
//
// Both balance rows are locked up front in lexicographic warehouse-id order
// (the sole deadlock-avoidance mechanism), then the OUT side is appended
// first: if the source lacks stock, the whole unit rolls back and no IN side
// ever exists. A commit conflict is retryable by the caller as a whole, with
// fresh sequence numbers.
func (c *Coordinator) Transfer(ctx context.Context, sparePartID, fromWarehouseID, toWarehouseID id.ID, quantity int64, remark string) (Result, error) {
	if id.IsNil(sparePartID) {
		return Result{}, apperror.NewInvalidMovement("spare part is required").
			WithDetail("field", "sparePartId")
	}
	if id.IsNil(fromWarehouseID) || id.IsNil(toWarehouseID) {
		return Result{}, apperror.NewInvalidMovement("both warehouses are required")
	}
	if fromWarehouseID == toWarehouseID {
		return Result{}, apperror.NewInvalidMovement("source and target warehouse must differ").
			WithDetail("warehouseId", fromWarehouseID)
	}
	if quantity <= 0 {
		return Result{}, apperror.NewInvalidMovement("quantity must be positive").
			WithDetail("quantity", quantity)
	}

	out, in := entity.NewTransferPair(sparePartID, fromWarehouseID, toWarehouseID, quantity, time.Now().UTC(), remark)
	if err := verifyPair(out, in); err != nil {
		return Result{}, err
	}

	var result Result
	err := c.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := c.projector.LockBalances(ctx, sparePartID, fromWarehouseID, toWarehouseID); err != nil {
			return err
		}

		outMovement, err := c.ledger.Append(ctx, out)
		if err != nil {
			return err
		}

		inMovement, err := c.ledger.Append(ctx, in)
		if err != nil {
			return err
		}

		result = Result{Out: outMovement, In: inMovement}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.Info(ctx, "transfer committed",
		"correlation_id", result.CorrelationID(),
		"spare_part_id", sparePartID,
		"from_warehouse_id", fromWarehouseID,
		"to_warehouse_id", toWarehouseID,
		"quantity", quantity,
	)

	return result, nil
}

// verifyPair checks the mirrored-pair invariant. A failure here means a
// defect in pair construction, not a caller error.
func verifyPair(out, in entity.StockMovement) error {
	switch {
	case out.Kind != entity.KindTransferOut || in.Kind != entity.KindTransferIn:
		return apperror.NewTransferMismatch("transfer sides have wrong kinds")
	case out.Quantity != in.Quantity:
		return apperror.NewTransferMismatch("transfer sides disagree on quantity").
			WithDetail("out", out.Quantity).
			WithDetail("in", in.Quantity)
	case out.CorrelationID == nil || in.CorrelationID == nil || *out.CorrelationID != *in.CorrelationID:
		return apperror.NewTransferMismatch("transfer sides disagree on correlation id")
	case out.CounterpartWarehouseID == nil || *out.CounterpartWarehouseID != in.WarehouseID:
		return apperror.NewTransferMismatch("out side does not mirror in warehouse")
	case in.CounterpartWarehouseID == nil || *in.CounterpartWarehouseID != out.WarehouseID:
		return apperror.NewTransferMismatch("in side does not mirror out warehouse")
	}
	return nil
}
