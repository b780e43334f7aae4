package dto

import (
	"fleetstock/internal/domain/transfer"
)

// TransferRequest is the body of POST /transfers.
type TransferRequest struct {
	SparePartID     string `json:"sparePartId" binding:"required"`
	FromWarehouseID string `json:"fromWarehouseId" binding:"required"`
	ToWarehouseID   string `json:"toWarehouseId" binding:"required"`
	Quantity        int64  `json:"quantity" binding:"required"`
	Remark          string `json:"remark,omitempty"`
}

// TransferResponse carries both committed sides of a transfer.
type TransferResponse struct {
	CorrelationID string           `json:"correlationId"`
	Out           MovementResponse `json:"out"`
	In            MovementResponse `json:"in"`
}

// FromTransferResult converts a coordinator result to its response shape.
func FromTransferResult(r transfer.Result) TransferResponse {
	return TransferResponse{
		CorrelationID: r.CorrelationID().String(),
		Out:           FromMovement(r.Out),
		In:            FromMovement(r.In),
	}
}
