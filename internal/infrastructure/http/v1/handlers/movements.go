package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/infrastructure/http/v1/dto"
)

// MovementHandler handles HTTP requests for the stock movement ledger.
type MovementHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service *ledger.Service) *MovementHandler {
	return &MovementHandler{BaseHandler: base, service: service}
}

// Append handles POST /movements - records a receipt or an issue.
func (h *MovementHandler) Append(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AppendMovementRequest
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

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	var movement entity.StockMovement
	switch entity.MovementKind(req.Kind) {
	case entity.KindIn:
		movement = entity.NewReceipt(sparePartID, warehouseID, req.Quantity, occurredAt, req.Remark)
	case entity.KindOut:
		movement = entity.NewIssue(sparePartID, warehouseID, req.Quantity, occurredAt, req.Remark)
	default:
		// Transfer kinds must go through POST /transfers where both
		// sides commit in one unit.
		h.Error(c, apperror.NewInvalidMovement("kind must be IN or OUT"))
		return
	}

	appended, err := h.service.Append(ctx, movement)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromMovement(appended))
}

// List handles GET /movements - paginated ledger listing with filters.
func (h *MovementHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := ledger.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
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

	if correlationID := c.Query("correlationId"); correlationID != "" {
		parsed, err := id.Parse(correlationID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid correlationId format"))
			return
		}
		filter.CorrelationID = &parsed
	}

	if kind := c.Query("kind"); kind != "" {
		parsed := entity.MovementKind(kind)
		if !parsed.Valid() {
			h.Error(c, apperror.NewValidation("invalid kind"))
			return
		}
		filter.Kind = &parsed
	}

	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from timestamp"))
			return
		}
		filter.From = &parsed
	}

	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to timestamp"))
			return
		}
		filter.To = &parsed
	}

	movements, err := h.service.ListMovements(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromMovement(m)
	}

	h.OK(c, dto.MovementListResponse{
		Items:  items,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// Get handles GET /movements/:id - fetch a single ledger entry.
func (h *MovementHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	movementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	movement, err := h.service.GetMovement(ctx, movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMovement(movement))
}

// RegisterRoutes registers movement routes.
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Append)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
