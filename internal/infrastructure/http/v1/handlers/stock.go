package handlers

import (
	"github.com/gin-gonic/gin"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/id"
	"fleetstock/internal/domain/projection"
	"fleetstock/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for current stock balances.
type StockHandler struct {
	*BaseHandler
	projector *projection.Projector
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, projector *projection.Projector) *StockHandler {
	return &StockHandler{BaseHandler: base, projector: projector}
}

// List handles GET /stock - current balances with optional filters.
func (h *StockHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := projection.BalanceFilter{
		ExcludeZero: c.Query("excludeZero") == "true",
		Limit:       h.ParseIntQuery(c, "limit", 50),
		Offset:      h.ParseIntQuery(c, "offset", 0),
	}

	if sparePartID := c.Query("sparePartId"); sparePartID != "" {
		parsed, err := id.Parse(sparePartID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid sparePartId format"))
			return
		}
		filter.SparePartID = &parsed
	}

	if warehouseID := c.Query("warehouseId"); warehouseID != "" {
		parsed, err := id.Parse(warehouseID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid warehouseId format"))
			return
		}
		filter.WarehouseID = &parsed
	}

	balances, err := h.projector.Balances(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.BalanceResponse, len(balances))
	for i, b := range balances {
		items[i] = dto.FromBalance(b)
	}

	h.OK(c, gin.H{
		"items":  items,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
}
