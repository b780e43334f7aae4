package handlers

import (
	"github.com/gin-gonic/gin"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/id"
	"fleetstock/internal/domain/reconcile"
	"fleetstock/internal/infrastructure/http/v1/dto"
)

// ReconcileHandler handles HTTP requests for ledger-vs-balance checks.
type ReconcileHandler struct {
	*BaseHandler
	checker *reconcile.Checker
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(base *BaseHandler, checker *reconcile.Checker) *ReconcileHandler {
	return &ReconcileHandler{BaseHandler: base, checker: checker}
}

// Check handles POST /reconciliation - replays the ledger for one
// (sparePart, warehouse) pair and reports drift; optionally repairs.
func (h *ReconcileHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReconcileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sparePartID, err := id.Parse(req.SparePartID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid sparePartId format"))
		return
	}
	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	var report reconcile.Report
	if req.Repair {
		report, err = h.checker.Repair(ctx, sparePartID, warehouseID)
	} else {
		report, err = h.checker.Reconcile(ctx, sparePartID, warehouseID)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReport(report))
}

// RegisterRoutes registers reconciliation routes.
func (h *ReconcileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Check)
}
