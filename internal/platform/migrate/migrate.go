// Package migrate applies embedded goose migrations for the SQL backends.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

// TableName is the goose version table.
const TableName = "schema_migrations"

// Goose dialect names.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// goose keeps its configuration in package globals.
var mu sync.Mutex

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress messages at debug level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

// Fatalf forwards to slog.Error without exiting; goose also returns the error.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Up applies every pending migration found at the root of migrations.
func Up(ctx context.Context, db *sql.DB, dialect string, migrations fs.FS, logger *slog.Logger) error {
	if db == nil {
		return fmt.Errorf("sql db is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migrate", "dialect", dialect)

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetTableName(TableName)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info("migrations applied", "schema_version", version)
	return nil
}
