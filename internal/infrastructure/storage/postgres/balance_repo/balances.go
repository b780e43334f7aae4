// Package balance_repo provides the PostgreSQL implementation of the
// warehouse balance projection repository.
package balance_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	"fleetstock/internal/domain/projection"
	"fleetstock/internal/infrastructure/storage/postgres"
)

const balancesTable = "warehouse_balances"

var balanceColumns = []string{
	"spare_part_id", "warehouse_id",
	"current_stock", "last_movement_id", "updated_at",
}

// BalanceRepo implements projection.Repository.
type BalanceRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewBalanceRepo creates a new balance repository.
func NewBalanceRepo(txManager *postgres.TxManager) *BalanceRepo {
	return &BalanceRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the balance row, or a zero-valued row when the pair has
// never moved.
func (r *BalanceRepo) Get(ctx context.Context, sparePartID, warehouseID id.ID) (entity.WarehouseBalance, error) {
	var balance entity.WarehouseBalance

	q := r.builder.Select(balanceColumns...).
		From(balancesTable).
		Where(squirrel.Eq{
			"spare_part_id": sparePartID,
			"warehouse_id":  warehouseID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.WarehouseBalance{
				SparePartID: sparePartID,
				WarehouseID: warehouseID,
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// LockOrInit creates the balance row if absent and locks it FOR UPDATE.
// The insert-then-lock pair serializes concurrent first movements on the
// same (part, warehouse): only one writer creates the row, everyone waits
// on the same lock afterwards.
func (r *BalanceRepo) LockOrInit(ctx context.Context, sparePartID, warehouseID id.ID) (entity.WarehouseBalance, error) {
	var balance entity.WarehouseBalance
	querier := r.txManager.GetQuerier(ctx)

	_, err := querier.Exec(ctx, `
		INSERT INTO warehouse_balances (spare_part_id, warehouse_id, current_stock, last_movement_id, updated_at)
		VALUES ($1, $2, 0, $3, now())
		ON CONFLICT (spare_part_id, warehouse_id) DO NOTHING
	`, sparePartID, warehouseID, id.Nil())
	if err != nil {
		return balance, fmt.Errorf("init balance: %w", err)
	}

	err = pgxscan.Get(ctx, querier, &balance, `
		SELECT spare_part_id, warehouse_id, current_stock, last_movement_id, updated_at
		FROM warehouse_balances
		WHERE spare_part_id = $1 AND warehouse_id = $2
		FOR UPDATE
	`, sparePartID, warehouseID)
	if err != nil {
		return balance, fmt.Errorf("lock balance: %w", err)
	}

	return balance, nil
}

// Save writes the balance row. The caller holds the row lock from
// LockOrInit, so a plain UPDATE suffices.
func (r *BalanceRepo) Save(ctx context.Context, balance entity.WarehouseBalance) error {
	q := r.builder.Update(balancesTable).
		Set("current_stock", balance.CurrentStock).
		Set("last_movement_id", balance.LastMovementID).
		Set("updated_at", balance.UpdatedAt).
		Where(squirrel.Eq{
			"spare_part_id": balance.SparePartID,
			"warehouse_id":  balance.WarehouseID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update balance: row %s/%s missing", balance.SparePartID, balance.WarehouseID)
	}

	return nil
}

// List returns balances ordered by (spare_part_id, warehouse_id).
func (r *BalanceRepo) List(ctx context.Context, filter projection.BalanceFilter) ([]entity.WarehouseBalance, error) {
	q := r.builder.Select(balanceColumns...).From(balancesTable)

	if filter.SparePartID != nil {
		q = q.Where(squirrel.Eq{"spare_part_id": *filter.SparePartID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"current_stock": int64(0)})
	}

	q = q.OrderBy("spare_part_id", "warehouse_id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.WarehouseBalance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// Ensure interface compliance.
var _ projection.Repository = (*BalanceRepo)(nil)
