package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/costlessmarkets/pricebook-backend/internal/importer"
	"github.com/costlessmarkets/pricebook-backend/pkg/config"
	"github.com/costlessmarkets/pricebook-backend/pkg/db"
	"github.com/costlessmarkets/pricebook-backend/pkg/enums"
	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "import"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	file := flag.String("file", "", "path to the master CSV export")
	user := flag.String("user", "", "acting user recorded in the import log")
	source := flag.String("source", string(enums.ImportSourceExcel), "import source: EXCEL|EMAIL|MANUAL|PORTAL|API")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(1)
	}
	if *user == "" {
		fmt.Fprintln(os.Stderr, "missing -user")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "import",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	importSource, err := enums.ParseImportSource(*source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "unknown -source value:", *source)
		os.Exit(1)
	}

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

	service, err := importer.NewService(importer.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		logg.Error(context.Background(), "failed to open import file", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"file": *file,
	})
	logg.Info(ctx, "starting price book import")

	summary, err := service.Run(ctx, f, importer.RunOptions{
		Filename: filepath.Base(*file),
		User:     *user,
		Source:   importSource,
	})
	if err != nil {
		logg.Error(ctx, "import failed, database left untouched", err)
		os.Exit(1)
	}

	fmt.Printf("processed %d rows: %d vendors, %d link groups, %d items (%d skipped, %d errors)\n",
		summary.Processed, summary.Vendors, summary.LinkGroups, summary.Items, summary.Skipped, summary.Errors)
}
