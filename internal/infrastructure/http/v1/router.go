// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"fleetstock/internal/domain/ledger"
	"fleetstock/internal/domain/projection"
	"fleetstock/internal/domain/reconcile"
	"fleetstock/internal/domain/transfer"
	"fleetstock/internal/infrastructure/http/v1/handlers"
	"fleetstock/internal/infrastructure/http/v1/middleware"
	"fleetstock/internal/infrastructure/storage/postgres"
	"fleetstock/pkg/logger"
)

// RouterConfig holds the wired services the API exposes.
type RouterConfig struct {
	// Pool is used by health checks only; domain access goes through services
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	Ledger      *ledger.Service
	Projector   *projection.Projector
	Coordinator *transfer.Coordinator
	Checker     *reconcile.Checker
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		movementHandler := handlers.NewMovementHandler(base, cfg.Ledger)
		movementHandler.RegisterRoutes(v1.Group("/movements"))

		transferHandler := handlers.NewTransferHandler(base, cfg.Coordinator)
		transferHandler.RegisterRoutes(v1.Group("/transfers"))

		stockHandler := handlers.NewStockHandler(base, cfg.Projector)
		stockHandler.RegisterRoutes(v1.Group("/stock"))

		reconcileHandler := handlers.NewReconcileHandler(base, cfg.Checker)
		reconcileHandler.RegisterRoutes(v1.Group("/reconciliation"))
	}

	return router
}
