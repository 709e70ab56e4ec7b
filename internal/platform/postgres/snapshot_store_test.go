package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/noble-diary/internal/ciutil"
	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/phrazzld/noble-diary/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to the test database or skips the test.
func openTestStore(t *testing.T) *PostgresSnapshotStore {
	t.Helper()
	url := ciutil.TestDatabaseURL(logger.Discard())
	if url == "" {
		t.Skip("DIARY_TEST_DB_URL / DATABASE_URL not set, skipping PostgreSQL test")
	}
	s, err := Open(context.Background(), url, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func snapshot(id string, version uint64, payload string) *store.Snapshot {
	return &store.Snapshot{
		Kind:      "noble",
		ID:        id,
		Version:   version,
		Codec:     "json",
		Payload:   []byte(payload),
		Checksum:  store.Checksum([]byte(payload)),
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOpenRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestPostgresSnapshotStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		_, err := s.Get(ctx, "noble", uuid.NewString())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		id := uuid.NewString()
		want := snapshot(id, 3, `{"gold":100}`)
		require.NoError(t, s.Put(ctx, want))

		got, err := s.Get(ctx, "noble", id)
		require.NoError(t, err)
		assert.Equal(t, want.Version, got.Version)
		assert.Equal(t, want.Payload, got.Payload)
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
		assert.NoError(t, got.Verify())
	})

	t.Run("stale version", func(t *testing.T) {
		id := uuid.NewString()
		require.NoError(t, s.Put(ctx, snapshot(id, 5, `{"v":5}`)))
		assert.ErrorIs(t, s.Put(ctx, snapshot(id, 4, `{"v":4}`)), store.ErrStaleVersion)

		got, err := s.Get(ctx, "noble", id)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), got.Version)
	})
}
