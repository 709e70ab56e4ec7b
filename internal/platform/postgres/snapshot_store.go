package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/phrazzld/noble-diary/internal/platform/migrate"
	"github.com/phrazzld/noble-diary/internal/platform/postgres/migrations"
	"github.com/phrazzld/noble-diary/internal/redact"
	"github.com/phrazzld/noble-diary/internal/store"
)

// PostgresSnapshotStore implements store.SnapshotStore on PostgreSQL.
type PostgresSnapshotStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.SnapshotStore = (*PostgresSnapshotStore)(nil)

// Open connects to databaseURL, configures the pool and applies migrations.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresSnapshotStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", MapError(err))
	}

	if err := migrate.Up(ctx, db, migrate.DialectPostgres, migrations.FS, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewPostgresSnapshotStore(db, logger), nil
}

// NewPostgresSnapshotStore wraps an open database handle whose schema is
// already migrated. If logger is nil, a default logger will be used.
func NewPostgresSnapshotStore(db *sql.DB, logger *slog.Logger) *PostgresSnapshotStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSnapshotStore{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_snapshot_store")),
	}
}

// Close closes the connection pool.
func (s *PostgresSnapshotStore) Close() error {
	return s.db.Close()
}

// Get implements store.SnapshotStore.
func (s *PostgresSnapshotStore) Get(ctx context.Context, kind, id string) (*store.Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT version, codec, payload, checksum, updated_at
		FROM snapshots
		WHERE kind = $1 AND id = $2
	`
	snap := store.Snapshot{Kind: kind, ID: id}
	var version int64
	err := s.db.QueryRowContext(ctx, query, kind, id).
		Scan(&version, &snap.Codec, &snap.Payload, &snap.Checksum, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Error("failed to read snapshot",
			slog.String("kind", kind),
			slog.String("aggregate_id", id),
			slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}

	snap.Version = uint64(version)
	snap.UpdatedAt = snap.UpdatedAt.UTC()
	return &snap, nil
}

// Put implements store.SnapshotStore.
// The row lock taken by SELECT ... FOR UPDATE orders writers on an existing
// snapshot; the guarded upsert covers two writers racing to create it.
func (s *PostgresSnapshotStore) Put(ctx context.Context, snap *store.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var current int64
		err := tx.QueryRowContext(ctx,
			`SELECT version FROM snapshots WHERE kind = $1 AND id = $2 FOR UPDATE`,
			snap.Kind, snap.ID,
		).Scan(&current)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return MapError(err)
		case uint64(current) > snap.Version:
			return fmt.Errorf("%w: stored %d, got %d", store.ErrStaleVersion, current, snap.Version)
		}

		return upsert(ctx, tx, snap)
	})
	if err != nil && !errors.Is(err, store.ErrStaleVersion) {
		log.Error("failed to write snapshot",
			slog.String("kind", snap.Kind),
			slog.String("aggregate_id", snap.ID),
			slog.String("error", redact.Error(err)))
	}
	return err
}

func upsert(ctx context.Context, db store.DBTX, snap *store.Snapshot) error {
	query := `
		INSERT INTO snapshots (kind, id, version, codec, payload, checksum, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (kind, id) DO UPDATE SET
			version    = EXCLUDED.version,
			codec      = EXCLUDED.codec,
			payload    = EXCLUDED.payload,
			checksum   = EXCLUDED.checksum,
			updated_at = EXCLUDED.updated_at
		WHERE snapshots.version <= EXCLUDED.version
	`
	result, err := db.ExecContext(ctx, query,
		snap.Kind,
		snap.ID,
		int64(snap.Version),
		snap.Codec,
		snap.Payload,
		snap.Checksum,
		snap.UpdatedAt.UTC(),
	)
	if err != nil {
		return MapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrStaleVersion
	}
	return nil
}
