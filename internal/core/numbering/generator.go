// Package numbering provides the domain contract for movement sequence numbers.
// Implementations live in the infrastructure layer.
package numbering

import (
	"context"
	"fmt"
	"time"

	"fleetstock/internal/core/id"
)

// Generator issues sequence numbers scoped by a caller-supplied key.
//
// Guarantees:
//   - values are unique within a scope, even under concurrent callers
//   - issuance order is monotonically increasing per scope
//   - a failed call issues nothing; gaps only come from successful
//     allocations whose surrounding transaction later aborted
type Generator interface {
	// Next returns the next formatted sequence string for the scope.
	Next(ctx context.Context, scopeKey string) (string, error)
}

// Config controls the deterministic formatting of issued numbers.
type Config struct {
	// Prefix added to all numbers (e.g. "MV")
	Prefix string

	// PadWidth is the zero-padded counter width (default 6)
	PadWidth int
}

// DefaultConfig returns the standard movement-number format.
func DefaultConfig() Config {
	return Config{
		Prefix:   "MV",
		PadWidth: 6,
	}
}

// Format renders the final number string: PREFIX-SCOPE-NNNNNN.
func (c Config) Format(scopeKey string, n int64) string {
	padWidth := c.PadWidth
	if padWidth == 0 {
		padWidth = 6
	}
	return fmt.Sprintf("%s-%s-%0*d", c.Prefix, scopeKey, padWidth, n)
}

// ScopeKey builds the per-warehouse, per-month counter scope for a movement.
func ScopeKey(warehouseID id.ID, occurredAt time.Time) string {
	return fmt.Sprintf("%s:%s", warehouseID, occurredAt.UTC().Format("2006-01"))
}
