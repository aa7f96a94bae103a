package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/costlessmarkets/pricebook-backend/api/routes"
	"github.com/costlessmarkets/pricebook-backend/internal/changes"
	"github.com/costlessmarkets/pricebook-backend/internal/export"
	"github.com/costlessmarkets/pricebook-backend/internal/history"
	"github.com/costlessmarkets/pricebook-backend/internal/items"
	"github.com/costlessmarkets/pricebook-backend/internal/vendors"
	"github.com/costlessmarkets/pricebook-backend/pkg/config"
	"github.com/costlessmarkets/pricebook-backend/pkg/db"
	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
	"github.com/costlessmarkets/pricebook-backend/pkg/metrics"
	"github.com/costlessmarkets/pricebook-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	workflowMetrics := metrics.NewWorkflowMetrics(registry)

	vendorsRepo := vendors.NewRepository(dbClient.DB())
	itemsRepo := items.NewRepository(dbClient.DB())
	changesRepo := changes.NewRepository(dbClient.DB())
	historyRepo := history.NewRepository(dbClient.DB())
	exportRepo := export.NewRepository(dbClient.DB())

	vendorsService, err := vendors.NewService(vendorsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor service", err)
		os.Exit(1)
	}

	itemsService, err := items.NewService(itemsRepo, historyRepo, vendorsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create item service", err)
		os.Exit(1)
	}

	changesService, err := changes.NewService(changesRepo, itemsRepo, historyRepo, vendorsRepo, dbClient, workflowMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create change service", err)
		os.Exit(1)
	}

	exportService, err := export.NewService(exportRepo, changesRepo, dbClient, cfg.Export, workflowMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			vendorsService,
			itemsService,
			changesService,
			exportService,
			changesRepo,
			historyRepo,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
