package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationTableName keeps goose's bookkeeping out of the way of
// application tables.
const migrationTableName = "storefront_schema_migrations"

// slogGooseLogger adapts goose's logger interface to slog so migration
// output lands in the same structured stream as the rest of the app.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// RunMigrations applies all pending schema migrations embedded in the
// binary. It is called once at startup, before any store is constructed.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if db == nil {
		panic("db cannot be nil as this indicates a programming error in the application setup")
	}
	if logger == nil {
		panic("logger cannot be nil as this indicates a programming error in the application setup")
	}
	migrationLogger := logger.With(slog.String("component", "migrations"))

	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(migrationTableName)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	start := time.Now()
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		migrationLogger.Warn("failed to read schema version after migration", "error", err)
	} else {
		migrationLogger.Info("database schema is up to date",
			"version", version,
			"duration_ms", time.Since(start).Milliseconds())
	}
	return nil
}
