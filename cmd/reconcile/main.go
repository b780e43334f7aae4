// Package main provides a CLI tool for reconciling warehouse balances
// against the movement ledger.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"fleetstock/internal/core/id"
	corenumbering "fleetstock/internal/core/numbering"
	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/domain/projection"
	"fleetstock/internal/domain/reconcile"
	"fleetstock/internal/infrastructure/numbering"
	"fleetstock/internal/infrastructure/storage/postgres"
	"fleetstock/internal/infrastructure/storage/postgres/balance_repo"
	"fleetstock/internal/infrastructure/storage/postgres/ledger_repo"
	"fleetstock/pkg/logger"
)

// checkPageSize bounds one balance listing round trip in --all mode.
const checkPageSize = 200

func main() {
	var (
		partFlag      = flag.String("part", "", "spare part id to check")
		warehouseFlag = flag.String("warehouse", "", "warehouse id to check")
		allFlag       = flag.Bool("all", false, "check every stored balance")
		repairFlag    = flag.Bool("repair", false, "rewrite drifted balances from ledger replay")
	)
	flag.Parse()

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

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	movementRepo := ledger_repo.NewMovementRepo(txManager)
	balanceRepo := balance_repo.NewBalanceRepo(txManager)
	sequencer := numbering.New(pool, corenumbering.DefaultConfig())
	projector := projection.NewProjector(balanceRepo)
	ledgerService := ledger.NewService(movementRepo, projector, sequencer, txManager)
	checker := reconcile.NewChecker(ledgerService, balanceRepo, txManager)

	switch {
	case *allFlag:
		if err := checkAll(ctx, checker, projector, *repairFlag); err != nil {
			log.Fatalw("reconciliation failed", "error", err)
		}
	case *partFlag != "" && *warehouseFlag != "":
		sparePartID, err := id.Parse(*partFlag)
		if err != nil {
			log.Fatalw("invalid -part", "error", err)
		}
		warehouseID, err := id.Parse(*warehouseFlag)
		if err != nil {
			log.Fatalw("invalid -warehouse", "error", err)
		}
		if _, err := checkOne(ctx, checker, sparePartID, warehouseID, *repairFlag); err != nil {
			log.Fatalw("reconciliation failed", "error", err)
		}
	default:
		fmt.Println("usage: reconcile -part <uuid> -warehouse <uuid> [-repair] | reconcile -all [-repair]")
		os.Exit(2)
	}
}

func checkOne(ctx context.Context, checker *reconcile.Checker, sparePartID, warehouseID id.ID, repair bool) (reconcile.Report, error) {
	var (
		report reconcile.Report
		err    error
	)
	if repair {
		report, err = checker.Repair(ctx, sparePartID, warehouseID)
	} else {
		report, err = checker.Reconcile(ctx, sparePartID, warehouseID)
	}
	if err != nil {
		return reconcile.Report{}, err
	}
	printReport(report)
	return report, nil
}

// checkAll pages through stored balances and reconciles each pair. Offset
// paging over the (spare_part_id, warehouse_id) ordering makes an interrupted
// run restartable: re-running rechecks from the start and converges.
func checkAll(ctx context.Context, checker *reconcile.Checker, projector *projection.Projector, repair bool) error {
	filter := projection.BalanceFilter{Limit: checkPageSize}
	drifted := 0
	checked := 0

	for {
		page, err := projector.Balances(ctx, filter)
		if err != nil {
			return fmt.Errorf("list balances: %w", err)
		}

		for _, balance := range page {
			report, err := checkOne(ctx, checker, balance.SparePartID, balance.WarehouseID, repair)
			if err != nil {
				return err
			}
			checked++
			if report.HasDrift() {
				drifted++
			}
		}

		if len(page) < checkPageSize {
			break
		}
		filter.Offset += checkPageSize
	}

	fmt.Printf("checked %d balances, %d drifted\n", checked, drifted)
	return nil
}

func printReport(r reconcile.Report) {
	status := "OK"
	if r.HasDrift() {
		status = fmt.Sprintf("DRIFT %+d", r.Drift)
	}
	if r.Repaired {
		status += " (repaired)"
	}
	fmt.Printf("%s / %s: ledger=%d stored=%d movements=%d %s\n",
		r.SparePartID, r.WarehouseID, r.Expected, r.Actual, r.MovementCount, status)
}
