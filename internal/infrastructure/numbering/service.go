// Package numbering provides the PostgreSQL implementation of scoped
// sequence numbering. It implements core/numbering.Generator.
package numbering

import (
	"context"

	"github.com/jackc/pgx/v5"

	"fleetstock/internal/core/apperror"
	corenumbering "fleetstock/internal/core/numbering"
)

// Querier interface for database operations. The service is handed the pool
// directly: numbering runs outside business transactions, so an aborted
// append leaves a gap in the counter but never a duplicate.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service issues sequence numbers from scoped counters.
type Service struct {
	querier Querier
	cfg     corenumbering.Config
}

// Ensure compile-time interface compliance.
var _ corenumbering.Generator = (*Service)(nil)

// New creates a numbering service over the given querier.
func New(querier Querier, cfg corenumbering.Config) *Service {
	return &Service{
		querier: querier,
		cfg:     cfg,
	}
}

// Next allocates the next counter value for the scope as a single
// conditional update. The UPSERT + RETURNING round trip is the atomic
// increment-and-read: concurrent callers on the same scope serialize on the
// counter row and never observe the same value.
func (s *Service) Next(ctx context.Context, scopeKey string) (string, error) {
	var num int64

	err := s.querier.QueryRow(ctx, `
		INSERT INTO numbering_counters (scope_key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (scope_key) DO UPDATE SET current_val = numbering_counters.current_val + 1
		RETURNING current_val
	`, scopeKey).Scan(&num)
	if err != nil {
		return "", apperror.NewNumberingUnavailable(err).WithDetail("scope_key", scopeKey)
	}

	return s.cfg.Format(scopeKey, num), nil
}

// SetNext sets the counter so the next allocation returns value (for
// migrations and backfills).
func (s *Service) SetNext(ctx context.Context, scopeKey string, value int64) error {
	var result int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO numbering_counters (scope_key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (scope_key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, scopeKey, value-1).Scan(&result)
	if err != nil {
		return apperror.NewNumberingUnavailable(err).WithDetail("scope_key", scopeKey)
	}
	return nil
}
