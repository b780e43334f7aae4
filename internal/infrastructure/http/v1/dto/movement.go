// Package dto defines request/response shapes for the v1 HTTP API.
package dto

import (
	"time"

	"fleetstock/internal/core/entity"
)

// AppendMovementRequest is the body of POST /movements.
// Only single-sided kinds are accepted here; transfers go through
// POST /transfers so both sides commit together.
type AppendMovementRequest struct {
	Kind        string     `json:"kind" binding:"required"`
	SparePartID string     `json:"sparePartId" binding:"required"`
	WarehouseID string     `json:"warehouseId" binding:"required"`
	Quantity    int64      `json:"quantity" binding:"required"`
	OccurredAt  *time.Time `json:"occurredAt,omitempty"`
	Remark      string     `json:"remark,omitempty"`
}

// MovementResponse mirrors one ledger entry.
type MovementResponse struct {
	ID                     string    `json:"id"`
	SequenceNumber         string    `json:"sequenceNumber"`
	OccurredAt             time.Time `json:"occurredAt"`
	SparePartID            string    `json:"sparePartId"`
	WarehouseID            string    `json:"warehouseId"`
	Kind                   string    `json:"kind"`
	Quantity               int64     `json:"quantity"`
	CounterpartWarehouseID string    `json:"counterpartWarehouseId,omitempty"`
	CorrelationID          string    `json:"correlationId,omitempty"`
	Remark                 string    `json:"remark,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
}

// FromMovement converts a ledger entity to its response shape.
func FromMovement(m entity.StockMovement) MovementResponse {
	resp := MovementResponse{
		ID:             m.ID.String(),
		SequenceNumber: m.SequenceNumber,
		OccurredAt:     m.OccurredAt,
		SparePartID:    m.SparePartID.String(),
		WarehouseID:    m.WarehouseID.String(),
		Kind:           string(m.Kind),
		Quantity:       m.Quantity,
		Remark:         m.Remark,
		CreatedAt:      m.CreatedAt,
	}
	if m.CounterpartWarehouseID != nil {
		resp.CounterpartWarehouseID = m.CounterpartWarehouseID.String()
	}
	if m.CorrelationID != nil {
		resp.CorrelationID = m.CorrelationID.String()
	}
	return resp
}

// MovementListResponse is the body of GET /movements.
type MovementListResponse struct {
	Items  []MovementResponse `json:"items"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
