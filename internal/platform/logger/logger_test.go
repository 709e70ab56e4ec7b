package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  slog.Level
		known bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"fatal", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := logger.ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &logger.TestLogBuffer{}
	l, err := logger.Setup(logger.LoggerConfig{Level: "warn", Output: buf})
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("dropped")
	slog.Warn("kept", "component", "test")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "test", entries[0]["component"])
}

func TestSetupInvalidLevelWarns(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &logger.TestLogBuffer{}
	_, err := logger.Setup(logger.LoggerConfig{Level: "loud", Output: buf})
	require.NoError(t, err)

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "loud", entries[0]["configured_level"])
}

func TestContextLogger(t *testing.T) {
	l, buf := logger.NewTestLogger()
	fallback := logger.Discard()

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))

	ctx := logger.WithLogger(context.Background(), l)
	assert.Same(t, l, logger.FromContext(ctx))
	assert.Same(t, l, logger.FromContextOrDefault(ctx, fallback))

	logger.FromContext(ctx).Debug("from context")
	assert.Contains(t, buf.String(), "from context")
}
