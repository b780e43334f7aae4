// Package main provides a CLI tool for creating the database schema and
// optionally seeding demo movements.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fleetstock/internal/core/entity"
	"fleetstock/internal/core/id"
	corenumbering "fleetstock/internal/core/numbering"
	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/domain/projection"
	"fleetstock/internal/domain/transfer"
	"fleetstock/internal/infrastructure/numbering"
	"fleetstock/internal/infrastructure/storage/postgres"
	"fleetstock/internal/infrastructure/storage/postgres/balance_repo"
	"fleetstock/internal/infrastructure/storage/postgres/ledger_repo"
	"fleetstock/pkg/logger"
)

// schema holds the DDL for all fleetstock tables. Statements are idempotent
// so the tool is safe to re-run.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS stock_movements (
		id UUID PRIMARY KEY,
		sequence_number TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		spare_part_id UUID NOT NULL,
		warehouse_id UUID NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('IN', 'OUT', 'TRANSFER_OUT', 'TRANSFER_IN')),
		quantity BIGINT NOT NULL CHECK (quantity > 0),
		counterpart_warehouse_id UUID,
		correlation_id UUID,
		remark TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	// Sequence numbers are globally unique; the scope is embedded in the value.
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_stock_movements_sequence_number
		ON stock_movements (sequence_number)`,

	// Replay path: all movements of one (part, warehouse) pair in order.
	`CREATE INDEX IF NOT EXISTS ix_stock_movements_pair_seq
		ON stock_movements (spare_part_id, warehouse_id, sequence_number)`,

	`CREATE INDEX IF NOT EXISTS ix_stock_movements_correlation
		ON stock_movements (correlation_id) WHERE correlation_id IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS warehouse_balances (
		spare_part_id UUID NOT NULL,
		warehouse_id UUID NOT NULL,
		current_stock BIGINT NOT NULL DEFAULT 0 CHECK (current_stock >= 0),
		last_movement_id UUID NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (spare_part_id, warehouse_id)
	)`,

	`CREATE TABLE IF NOT EXISTS numbering_counters (
		scope_key TEXT PRIMARY KEY,
		current_val BIGINT NOT NULL DEFAULT 0
	)`,
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := createSchema(ctx, pool); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema is up to date")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func createSchema(ctx context.Context, pool *postgres.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

// seedDemoData records a handful of movements through the full service stack
// so the demo data goes through the same validation, numbering and projection
// as production traffic.
func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txManager := postgres.NewTxManager(pool)
	movementRepo := ledger_repo.NewMovementRepo(txManager)
	balanceRepo := balance_repo.NewBalanceRepo(txManager)
	sequencer := numbering.New(pool, corenumbering.DefaultConfig())
	projector := projection.NewProjector(balanceRepo)
	ledgerService := ledger.NewService(movementRepo, projector, sequencer, txManager)
	coordinator := transfer.NewCoordinator(ledgerService, projector, txManager)

	oilFilter := id.New()
	brakePad := id.New()
	mainDepot := id.New()
	fieldDepot := id.New()

	now := time.Now().UTC()

	receipts := []entity.StockMovement{
		entity.NewReceipt(oilFilter, mainDepot, 120, now.AddDate(0, 0, -14), "initial purchase"),
		entity.NewReceipt(brakePad, mainDepot, 80, now.AddDate(0, 0, -14), "initial purchase"),
		entity.NewReceipt(oilFilter, fieldDepot, 20, now.AddDate(0, 0, -10), "direct delivery"),
	}
	for _, m := range receipts {
		if _, err := ledgerService.Append(ctx, m); err != nil {
			return fmt.Errorf("append receipt: %w", err)
		}
	}

	issues := []entity.StockMovement{
		entity.NewIssue(oilFilter, mainDepot, 12, now.AddDate(0, 0, -7), "work order 4711"),
		entity.NewIssue(brakePad, mainDepot, 8, now.AddDate(0, 0, -6), "work order 4712"),
	}
	for _, m := range issues {
		if _, err := ledgerService.Append(ctx, m); err != nil {
			return fmt.Errorf("append issue: %w", err)
		}
	}

	if _, err := coordinator.Transfer(ctx, oilFilter, mainDepot, fieldDepot, 30, "restock field depot"); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	log.Infow("demo data seeded",
		"spare_parts", []id.ID{oilFilter, brakePad},
		"warehouses", []id.ID{mainDepot, fieldDepot},
	)
	return nil
}
