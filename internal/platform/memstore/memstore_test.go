package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/noble-diary/internal/platform/memstore"
	"github.com/phrazzld/noble-diary/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(version uint64, payload string) *store.Snapshot {
	return &store.Snapshot{
		Kind:      "noble",
		ID:        "n1",
		Version:   version,
		Codec:     "json",
		Payload:   []byte(payload),
		Checksum:  store.Checksum([]byte(payload)),
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing snapshot", func(t *testing.T) {
		s := memstore.New()
		_, err := s.Get(ctx, "noble", "n1")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		s := memstore.New()
		require.NoError(t, s.Put(ctx, snapshot(1, `{"a":1}`)))

		got, err := s.Get(ctx, "noble", "n1")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), got.Version)
		assert.Equal(t, []byte(`{"a":1}`), got.Payload)
	})

	t.Run("returned snapshots are copies", func(t *testing.T) {
		s := memstore.New()
		require.NoError(t, s.Put(ctx, snapshot(1, `{"a":1}`)))

		got, err := s.Get(ctx, "noble", "n1")
		require.NoError(t, err)
		got.Payload[0] = 'X'

		again, err := s.Get(ctx, "noble", "n1")
		require.NoError(t, err)
		assert.NoError(t, again.Verify())
	})

	t.Run("older version rejected", func(t *testing.T) {
		s := memstore.New()
		require.NoError(t, s.Put(ctx, snapshot(3, `{"v":3}`)))

		err := s.Put(ctx, snapshot(2, `{"v":2}`))
		assert.ErrorIs(t, err, store.ErrStaleVersion)

		got, err := s.Get(ctx, "noble", "n1")
		require.NoError(t, err)
		assert.Equal(t, uint64(3), got.Version)
		assert.Equal(t, 1, s.Puts())
	})

	t.Run("equal version overwrites", func(t *testing.T) {
		s := memstore.New()
		require.NoError(t, s.Put(ctx, snapshot(3, `{"v":3}`)))
		require.NoError(t, s.Put(ctx, snapshot(3, `{"v":"3b"}`)))

		got, err := s.Get(ctx, "noble", "n1")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"v":"3b"}`), got.Payload)
	})

	t.Run("invalid snapshot rejected", func(t *testing.T) {
		s := memstore.New()
		bad := snapshot(1, `{}`)
		bad.Checksum = nil
		assert.ErrorIs(t, s.Put(ctx, bad), store.ErrInvalidSnapshot)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := memstore.New()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, s.Put(cctx, snapshot(1, `{}`)), context.Canceled)
	})
}
