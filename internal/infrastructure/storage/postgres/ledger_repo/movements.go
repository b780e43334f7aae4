// Package ledger_repo provides the PostgreSQL implementation of the
// movement ledger repository.
package ledger_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"fleetstock/internal/core/apperror"
	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/infrastructure/storage/postgres"
)

const movementsTable = "stock_movements"

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

var movementColumns = []string{
	"id", "sequence_number", "occurred_at",
	"spare_part_id", "warehouse_id", "kind", "quantity",
	"counterpart_warehouse_id", "correlation_id", "remark", "created_at",
}

// MovementRepo implements ledger.Repository.
type MovementRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewMovementRepo creates a new ledger repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert appends one movement. The ledger is append-only: there is no
// update or delete on this table.
func (r *MovementRepo) Insert(ctx context.Context, m *entity.StockMovement) error {
	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.SequenceNumber, m.OccurredAt,
			m.SparePartID, m.WarehouseID, m.Kind, m.Quantity,
			m.CounterpartWarehouseID, m.CorrelationID, m.Remark, m.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewDuplicateSequence(m.SequenceNumber).WithCause(err)
		}
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// List returns movements ordered by sequence_number ascending.
func (r *MovementRepo) List(ctx context.Context, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	q := r.buildListQuery(filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// buildListQuery translates a MovementFilter into SQL.
func (r *MovementRepo) buildListQuery(filter ledger.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.Select(movementColumns...).From(movementsTable)

	if filter.SparePartID != nil {
		q = q.Where(squirrel.Eq{"spare_part_id": *filter.SparePartID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.CorrelationID != nil {
		q = q.Where(squirrel.Eq{"correlation_id": *filter.CorrelationID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"occurred_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"occurred_at": *filter.To})
	}

	q = q.OrderBy("sequence_number")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return q
}

// GetByID returns a single movement.
func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (entity.StockMovement, error) {
	var movement entity.StockMovement

	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"id": movementID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return movement, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &movement, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return movement, apperror.NewNotFound("movement", movementID)
		}
		return movement, fmt.Errorf("get movement: %w", err)
	}

	return movement, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*MovementRepo)(nil)
