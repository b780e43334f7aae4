// Package main is the entry point for the fleetstock API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	corenumbering "fleetstock/internal/core/numbering"
	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/domain/projection"
	"fleetstock/internal/domain/reconcile"
	"fleetstock/internal/domain/transfer"
	v1 "fleetstock/internal/infrastructure/http/v1"
	"fleetstock/internal/infrastructure/numbering"
	"fleetstock/internal/infrastructure/storage/postgres"
	"fleetstock/internal/infrastructure/storage/postgres/balance_repo"
	"fleetstock/internal/infrastructure/storage/postgres/ledger_repo"
	"fleetstock/pkg/logger"
)

// Config is populated from the environment.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Port        string `envconfig:"APP_PORT" default:"8080"`
	Env         string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DBMaxConns int32 `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32 `envconfig:"DB_MIN_CONNS" default:"5"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting fleetstock server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	movementRepo := ledger_repo.NewMovementRepo(txManager)
	balanceRepo := balance_repo.NewBalanceRepo(txManager)

	// --- Services ---
	// Numbering goes straight to the pool: allocations happen outside
	// business transactions, so a rollback wastes a number but can
	// never hand the same one out twice.
	sequencer := numbering.New(pool, corenumbering.DefaultConfig())

	projector := projection.NewProjector(balanceRepo)
	ledgerService := ledger.NewService(movementRepo, projector, sequencer, txManager)
	coordinator := transfer.NewCoordinator(ledgerService, projector, txManager)
	checker := reconcile.NewChecker(ledgerService, balanceRepo, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:        pool,
		Logger:      log,
		Ledger:      ledgerService,
		Projector:   projector,
		Coordinator: coordinator,
		Checker:     checker,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
