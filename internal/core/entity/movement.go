// Package entity provides core domain entities.
package entity

import (
	"time"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/id"
)

// MovementKind defines the direction and pairing of a stock movement.
type MovementKind string

const (
	// KindIn increases stock (purchase receiving)
	KindIn MovementKind = "IN"
	// KindOut decreases stock (work-order consumption)
	KindOut MovementKind = "OUT"
	// KindTransferOut is the debit side of a warehouse transfer
	KindTransferOut MovementKind = "TRANSFER_OUT"
	// KindTransferIn is the credit side of a warehouse transfer
	KindTransferIn MovementKind = "TRANSFER_IN"
)

// Valid reports whether k is one of the four enumerated kinds.
func (k MovementKind) Valid() bool {
	switch k {
	case KindIn, KindOut, KindTransferOut, KindTransferIn:
		return true
	}
	return false
}

// IsTransfer reports whether k is one side of a two-sided transfer.
func (k MovementKind) IsTransfer() bool {
	return k == KindTransferOut || k == KindTransferIn
}

// Sign returns the balance delta direction: +1 for IN/TRANSFER_IN,
// -1 for OUT/TRANSFER_OUT.
func (k MovementKind) Sign() int64 {
	if k == KindOut || k == KindTransferOut {
		return -1
	}
	return 1
}

// StockMovement is an immutable ledger entry: the atomic fact that a quantity
// of one spare part moved in or out of one warehouse. Movements are never
// updated or deleted; corrections are new, reversing movements.
type StockMovement struct {
	// ID is assigned at append time, never reused
	ID id.ID `db:"id" json:"id"`

	// SequenceNumber is issued by the numbering service, unique within its scope
	SequenceNumber string `db:"sequence_number" json:"sequenceNumber"`

	// OccurredAt is the business date of the movement, not insertion wall-clock
	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`

	// Dimensions: the single-sided (part, warehouse) pair this entry affects
	SparePartID id.ID `db:"spare_part_id" json:"sparePartId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	Kind MovementKind `db:"kind" json:"kind"`

	// Quantity is strictly positive; direction comes from Kind
	Quantity int64 `db:"quantity" json:"quantity"`

	// CounterpartWarehouseID names the other side of a transfer.
	// Present only for TRANSFER_OUT/TRANSFER_IN.
	CounterpartWarehouseID *id.ID `db:"counterpart_warehouse_id" json:"counterpartWarehouseId,omitempty"`

	// CorrelationID links the two movements of one transfer.
	// Present only for transfer kinds.
	CorrelationID *id.ID `db:"correlation_id" json:"correlationId,omitempty"`

	// Remark is free text, optional
	Remark string `db:"remark" json:"remark,omitempty"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewReceipt builds an IN movement draft for purchase receiving.
// ID, SequenceNumber and CreatedAt are assigned by the ledger on append.
func NewReceipt(sparePartID, warehouseID id.ID, quantity int64, occurredAt time.Time, remark string) StockMovement {
	return StockMovement{
		OccurredAt:  occurredAt,
		SparePartID: sparePartID,
		WarehouseID: warehouseID,
		Kind:        KindIn,
		Quantity:    quantity,
		Remark:      remark,
	}
}

// NewIssue builds an OUT movement draft for work-order consumption.
func NewIssue(sparePartID, warehouseID id.ID, quantity int64, occurredAt time.Time, remark string) StockMovement {
	return StockMovement{
		OccurredAt:  occurredAt,
		SparePartID: sparePartID,
		WarehouseID: warehouseID,
		Kind:        KindOut,
		Quantity:    quantity,
		Remark:      remark,
	}
}

// NewTransferPair builds the mirrored TRANSFER_OUT/TRANSFER_IN drafts sharing
// one correlation id. The constructors are the only way transfer-only fields
// get set, so IN/OUT movements cannot carry them.
func NewTransferPair(sparePartID, fromWarehouseID, toWarehouseID id.ID, quantity int64, occurredAt time.Time, remark string) (out, in StockMovement) {
	correlationID := id.New()

	out = StockMovement{
		OccurredAt:             occurredAt,
		SparePartID:            sparePartID,
		WarehouseID:            fromWarehouseID,
		Kind:                   KindTransferOut,
		Quantity:               quantity,
		CounterpartWarehouseID: &toWarehouseID,
		CorrelationID:          &correlationID,
		Remark:                 remark,
	}
	in = StockMovement{
		OccurredAt:             occurredAt,
		SparePartID:            sparePartID,
		WarehouseID:            toWarehouseID,
		Kind:                   KindTransferIn,
		Quantity:               quantity,
		CounterpartWarehouseID: &fromWarehouseID,
		CorrelationID:          &correlationID,
		Remark:                 remark,
	}
	return out, in
}

// SignedQuantity returns the balance delta this movement contributes.
func (m *StockMovement) SignedQuantity() int64 {
	return m.Kind.Sign() * m.Quantity
}

// Validate enforces the kind-tagged shape of a movement before persistence.
func (m *StockMovement) Validate() error {
	if !m.Kind.Valid() {
		return apperror.NewInvalidMovement("unknown movement kind").
			WithDetail("kind", string(m.Kind))
	}

	if m.Quantity <= 0 {
		return apperror.NewInvalidMovement("quantity must be positive").
			WithDetail("quantity", m.Quantity)
	}

	if id.IsNil(m.SparePartID) {
		return apperror.NewInvalidMovement("spare part is required").
			WithDetail("field", "sparePartId")
	}

	if id.IsNil(m.WarehouseID) {
		return apperror.NewInvalidMovement("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if m.OccurredAt.IsZero() {
		return apperror.NewInvalidMovement("occurredAt is required").
			WithDetail("field", "occurredAt")
	}

	if m.Kind.IsTransfer() {
		if m.CounterpartWarehouseID == nil || id.IsNil(*m.CounterpartWarehouseID) {
			return apperror.NewInvalidMovement("transfer requires counterpart warehouse").
				WithDetail("field", "counterpartWarehouseId")
		}
		if *m.CounterpartWarehouseID == m.WarehouseID {
			return apperror.NewInvalidMovement("counterpart warehouse must differ from warehouse").
				WithDetail("warehouseId", m.WarehouseID)
		}
		if m.CorrelationID == nil || id.IsNil(*m.CorrelationID) {
			return apperror.NewInvalidMovement("transfer requires correlation id").
				WithDetail("field", "correlationId")
		}
	} else {
		if m.CounterpartWarehouseID != nil {
			return apperror.NewInvalidMovement("counterpart warehouse is only valid for transfers").
				WithDetail("kind", string(m.Kind))
		}
		if m.CorrelationID != nil {
			return apperror.NewInvalidMovement("correlation id is only valid for transfers").
				WithDetail("kind", string(m.Kind))
		}
	}

	return nil
}
