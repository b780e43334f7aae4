// Package ledger provides the append-only stock movement log.
package ledger

import (
	"context"
	"time"

	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
)

// Repository defines storage operations for the movement ledger.
type Repository interface {
	// Insert appends one movement. A sequence-number collision is reported
	// as a DuplicateSequence apperror; the row is never half-written.
	Insert(ctx context.Context, m *entity.StockMovement) error

	// List returns movements matching the filter, ordered by
	// sequence_number ascending. The ledger is append-only and sequence
	// numbers are immutable, so paging with Limit/Offset restarts cleanly.
	List(ctx context.Context, filter MovementFilter) ([]entity.StockMovement, error)

	// GetByID returns a single movement.
	GetByID(ctx context.Context, movementID id.ID) (entity.StockMovement, error)
}

// MovementFilter narrows List queries. Nil fields match everything.
type MovementFilter struct {
	SparePartID   *id.ID
	WarehouseID   *id.ID
	Kind          *entity.MovementKind
	CorrelationID *id.ID

	// Date range over OccurredAt (business date), inclusive from,
	// exclusive to.
	From *time.Time
	To   *time.Time

	Limit  int
	Offset int
}
