// Package main implements the entry point for the storefront rendering
// engine: a multi-tenant server that resolves stores from inbound
// domains and renders their themed pages.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/haldis/storefront-engine/internal/config"
	"github.com/haldis/storefront-engine/internal/platform/logger"
	"github.com/haldis/storefront-engine/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run loads configuration, sets up logging, connects to the database,
// applies migrations and hands control to the application.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}

	if err := postgres.RunMigrations(ctx, db, appLogger); err != nil {
		_ = db.Close()
		return err
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.Run(ctx)
}
