// Package sqlite provides a SQLite-backed store.SnapshotStore, the default
// backend for a single-player diary kept in a local file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/phrazzld/noble-diary/internal/platform/migrate"
	"github.com/phrazzld/noble-diary/internal/platform/sqlite/migrations"
	"github.com/phrazzld/noble-diary/internal/redact"
	"github.com/phrazzld/noble-diary/internal/store"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists snapshots in SQLite.
type Store struct {
	sqlDB  *sql.DB
	logger *slog.Logger
}

var _ store.SnapshotStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows one writer; a single connection keeps saves from
	// failing with SQLITE_BUSY under concurrent dispatch.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.Up(ctx, sqlDB, migrate.DialectSQLite, migrations.FS, logger); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		sqlDB:  sqlDB,
		logger: logger.With("component", "sqlite_store"),
	}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get implements store.SnapshotStore.
func (s *Store) Get(ctx context.Context, kind, id string) (*store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		snap      = store.Snapshot{Kind: kind, ID: id}
		version   int64
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT version, codec, payload, checksum, updated_at
		   FROM snapshots
		  WHERE kind = ? AND id = ?`,
		kind, id,
	).Scan(&version, &snap.Codec, &snap.Payload, &snap.Checksum, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapError(err)
	}

	snap.Version = uint64(version)
	snap.UpdatedAt = fromMillis(updatedAt)
	return &snap, nil
}

// Put implements store.SnapshotStore.
func (s *Store) Put(ctx context.Context, snap *store.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.sqlDB, func(ctx context.Context, tx *sql.Tx) error {
		var current int64
		err := tx.QueryRowContext(ctx,
			`SELECT version FROM snapshots WHERE kind = ? AND id = ?`,
			snap.Kind, snap.ID,
		).Scan(&current)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return mapError(err)
		case uint64(current) > snap.Version:
			return fmt.Errorf("%w: stored %d, got %d", store.ErrStaleVersion, current, snap.Version)
		}

		return upsert(ctx, tx, snap)
	})
	if err != nil && !errors.Is(err, store.ErrStaleVersion) {
		log.Error("failed to write snapshot",
			"kind", snap.Kind,
			"aggregate_id", snap.ID,
			"error", redact.Error(err))
	}
	return err
}

func upsert(ctx context.Context, db store.DBTX, snap *store.Snapshot) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO snapshots (kind, id, version, codec, payload, checksum, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (kind, id) DO UPDATE SET
		   version    = excluded.version,
		   codec      = excluded.codec,
		   payload    = excluded.payload,
		   checksum   = excluded.checksum,
		   updated_at = excluded.updated_at
		 WHERE snapshots.version <= excluded.version`,
		snap.Kind,
		snap.ID,
		int64(snap.Version),
		snap.Codec,
		snap.Payload,
		snap.Checksum,
		toMillis(snap.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if rows == 0 {
		return store.ErrStaleVersion
	}
	return nil
}

// mapError translates SQLite failures into store errors.
func mapError(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED, sqlite3lib.SQLITE_CANTOPEN:
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		case sqlite3lib.SQLITE_CONSTRAINT_CHECK, sqlite3lib.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%w: %v", store.ErrInvalidSnapshot, err)
		}
	}
	return err
}
