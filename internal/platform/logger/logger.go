package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoggerConfig holds the settings Setup needs.
type LoggerConfig struct {
	Level string

	// Output defaults to os.Stdout.
	Output io.Writer
}

// ParseLevel maps a configured level name to a slog.Level.
// Unknown names report ok=false and fall back to info.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup initializes the application's logging system. It creates a
// structured JSON logger with the configured level and installs it as the
// slog default so package-level slog calls share the same handler.
func Setup(cfg LoggerConfig) (*slog.Logger, error) {
	level, ok := ParseLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)

	if !ok {
		logger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.Level,
			"default_level", "info")
	}

	slog.SetDefault(logger)

	return logger, nil
}

// Discard returns a logger that drops every record. Useful for tests and
// for components constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
