// Package redisstore implements store.SnapshotStore on Redis. Each snapshot
// is a hash; writes use WATCH/MULTI so a lower version never replaces a
// higher one.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/phrazzld/noble-diary/internal/redact"
	"github.com/phrazzld/noble-diary/internal/store"
)

// DefaultKeyPrefix namespaces snapshot keys.
const DefaultKeyPrefix = "noble-diary:snapshot"

// maxWatchAttempts bounds optimistic transaction retries when another
// writer touches the key between WATCH and EXEC.
const maxWatchAttempts = 5

// Hash fields.
const (
	fieldVersion   = "version"
	fieldCodec     = "codec"
	fieldPayload   = "payload"
	fieldChecksum  = "checksum"
	fieldUpdatedAt = "updated_at"
)

// Store is a Redis-backed snapshot store.
type Store struct {
	rdb    *goredis.Client
	prefix string
	logger *slog.Logger
}

var _ store.SnapshotStore = (*Store)(nil)

// Open connects to addr and verifies the connection.
func Open(ctx context.Context, addr string, logger *slog.Logger) (*Store, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", store.ErrUnavailable, err)
	}

	return New(rdb, DefaultKeyPrefix, logger), nil
}

// New wraps an existing client.
func New(rdb *goredis.Client, prefix string, logger *slog.Logger) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		rdb:    rdb,
		prefix: prefix,
		logger: logger.With("component", "redis_snapshot_store"),
	}
}

// Close closes the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) key(kind, id string) string {
	return s.prefix + ":" + kind + ":" + id
}

// Get implements store.SnapshotStore.
func (s *Store) Get(ctx context.Context, kind, id string) (*store.Snapshot, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(kind, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, store.ErrNotFound
	}

	version, err := strconv.ParseUint(fields[fieldVersion], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad version field: %v", store.ErrInvalidSnapshot, err)
	}
	updatedAt, err := strconv.ParseInt(fields[fieldUpdatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad updated_at field: %v", store.ErrInvalidSnapshot, err)
	}

	return &store.Snapshot{
		Kind:      kind,
		ID:        id,
		Version:   version,
		Codec:     fields[fieldCodec],
		Payload:   []byte(fields[fieldPayload]),
		Checksum:  []byte(fields[fieldChecksum]),
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
	}, nil
}

// Put implements store.SnapshotStore.
func (s *Store) Put(ctx context.Context, snap *store.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	key := s.key(snap.Kind, snap.ID)

	write := func(tx *goredis.Tx) error {
		current, err := tx.HGet(ctx, key, fieldVersion).Uint64()
		switch {
		case errors.Is(err, goredis.Nil):
		case err != nil:
			return err
		case current > snap.Version:
			return fmt.Errorf("%w: stored %d, got %d", store.ErrStaleVersion, current, snap.Version)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, key, map[string]interface{}{
				fieldVersion:   strconv.FormatUint(snap.Version, 10),
				fieldCodec:     snap.Codec,
				fieldPayload:   snap.Payload,
				fieldChecksum:  snap.Checksum,
				fieldUpdatedAt: strconv.FormatInt(snap.UpdatedAt.UTC().UnixMilli(), 10),
			})
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxWatchAttempts; attempt++ {
		err := s.rdb.Watch(ctx, write, key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, store.ErrStaleVersion):
			return err
		case errors.Is(err, goredis.TxFailedErr):
			log.Debug("snapshot write raced, retrying",
				"kind", snap.Kind,
				"aggregate_id", snap.ID,
				"attempt", attempt)
			continue
		default:
			log.Error("failed to write snapshot",
				"kind", snap.Kind,
				"aggregate_id", snap.ID,
				"error", redact.Error(err))
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%w: too many concurrent writers for %s %q", store.ErrUnavailable, snap.Kind, snap.ID)
}
