package handlers

import (
	"github.com/gin-gonic/gin"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/id"
	"fleetstock/internal/domain/transfer"
	"fleetstock/internal/infrastructure/http/v1/dto"
)

// TransferHandler handles HTTP requests for inter-warehouse transfers.
type TransferHandler struct {
	*BaseHandler
	coordinator *transfer.Coordinator
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(base *BaseHandler, coordinator *transfer.Coordinator) *TransferHandler {
	return &TransferHandler{BaseHandler: base, coordinator: coordinator}
}

// Create handles POST /transfers - moves stock between two warehouses
// as a single atomic OUT/IN pair.
func (h *TransferHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sparePartID, err := id.Parse(req.SparePartID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid sparePartId format"))
		return
	}
	fromWarehouseID, err := id.Parse(req.FromWarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromWarehouseId format"))
		return
	}
	toWarehouseID, err := id.Parse(req.ToWarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toWarehouseId format"))
		return
	}

	result, err := h.coordinator.Transfer(ctx, sparePartID, fromWarehouseID, toWarehouseID, req.Quantity, req.Remark)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromTransferResult(result))
}

// RegisterRoutes registers transfer routes.
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
}
