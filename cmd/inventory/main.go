package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/config"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/database"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/httpapi"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/inventory"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/observability"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/remote"
)

func main() {
	cfg, err := config.Load(config.Defaults{
		ServiceName:  "inventory-service",
		Port:         "8081",
		DatabaseName: "inventory_db",
		RemoteURLEnv: "PRODUCTS_SERVICE_URL",
		RemoteURL:    "http://products-service:8080",
	})
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	shutdown, err := observability.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger := observability.NewLogger(cfg)
	defer logger.Sync()

	// Initialize storage
	var repository inventory.Repository
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		repository = inventory.NewMemoryInventoryRepository()
	default:
		if err := database.EnsureSchema(ctx, cfg.Database, inventory.Schema, logger); err != nil {
			logger.Fatal("failed to prepare schema", zap.Error(err))
		}
		pool, err := database.Connect(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to initialize database", zap.Error(err))
		}
		defer pool.Close()
		repository = inventory.NewInventoryRepository(pool)
	}

	productsClient := inventory.NewProductsClient(remote.NewClient(remote.Options{
		Service:      "products-service",
		BaseURL:      cfg.Remote.BaseURL,
		APIKeyHeader: cfg.APIKeyHeader,
		APIKey:       cfg.APIKey,
		Timeout:      cfg.Remote.Timeout,
		Policy: remote.RetryPolicy{
			Attempts: cfg.Remote.RetryAttempts,
			Delay:    cfg.Remote.RetryDelay,
		},
		Logger: logger,
	}))

	usecases := inventory.NewInventoryUseCase(repository, productsClient, otel.Tracer(cfg.ServiceName), logger)
	handler := inventory.NewInventoryHandler(usecases, logger)

	r := httpapi.NewRouter(cfg.ServiceName, logger)
	handler.RegisterRoutes(r, httpapi.RequireAPIKey(cfg.APIKeyHeader, cfg.APIKey))

	logger.Info("inventory service starting",
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.Storage),
		zap.String("products_url", cfg.Remote.BaseURL),
	)
	if err := httpapi.Serve(ctx, ":"+cfg.Port, r, cfg.ShutdownTimeout, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
}
