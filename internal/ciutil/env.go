package ciutil

import (
	"log/slog"
	"os"

	"github.com/phrazzld/noble-diary/internal/redact"
)

// Environment variable names read by the adapter tests.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"

	// EnvDiaryTestDBURL is the preferred name; DATABASE_URL is accepted too.
	EnvDiaryTestDBURL = "DIARY_TEST_DB_URL"
	EnvDatabaseURL    = "DATABASE_URL"

	// EnvDiaryTestRedisAddr is the preferred name; REDIS_ADDR is accepted too.
	EnvDiaryTestRedisAddr = "DIARY_TEST_REDIS_ADDR"
	EnvRedisAddr          = "REDIS_ADDR"
)

// IsCI reports whether the process runs under a known CI provider.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != ""
}

// GetEnvWithFallbacks returns the first non-empty variable in envVars, or
// defaultValue. Using any name but the first logs a warning.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		val := os.Getenv(envVar)
		if val == "" {
			continue
		}
		if i > 0 && logger != nil {
			logger.Warn("using fallback environment variable",
				"used_var", envVar,
				"preferred_var", envVars[0],
				"value", redact.String(val))
		}
		return val
	}
	return defaultValue
}

// TestDatabaseURL returns the Postgres URL for adapter tests, or "".
func TestDatabaseURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks([]string{EnvDiaryTestDBURL, EnvDatabaseURL}, "", logger)
}

// TestRedisAddr returns the Redis address for adapter tests, or "".
func TestRedisAddr(logger *slog.Logger) string {
	return GetEnvWithFallbacks([]string{EnvDiaryTestRedisAddr, EnvRedisAddr}, "", logger)
}
