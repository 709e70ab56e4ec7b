package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Sync    SyncConfig    `mapstructure:"sync"    validate:"required"`
	Auth    AuthConfig    `mapstructure:"auth"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Storage drivers understood by the server.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// StorageConfig selects and configures the persistence adapter.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"       validate:"required,oneof=memory sqlite postgres redis"`
	SQLitePath  string `mapstructure:"sqlite_path"  validate:"required_if=Driver sqlite"`
	DatabaseURL string `mapstructure:"database_url" validate:"required_if=Driver postgres,omitempty,url"`
	RedisAddr   string `mapstructure:"redis_addr"   validate:"required_if=Driver redis,omitempty,hostname_port"`
	Codec       string `mapstructure:"codec"        validate:"required,oneof=json cbor"`
}

// SyncConfig contains settings for the store synchronization bridges.
type SyncConfig struct {
	// NobleID identifies the aggregate this process hydrates and persists.
	NobleID string `mapstructure:"noble_id" validate:"required,min=1,max=64"`

	// AutosaveInterval is the period of the full-snapshot autosave. Zero disables it.
	AutosaveInterval time.Duration `mapstructure:"autosave_interval" validate:"gte=0"`

	SaveWorkers   int           `mapstructure:"save_workers"    validate:"gte=1,lte=64"`
	SaveQueueSize int           `mapstructure:"save_queue_size" validate:"gte=1"`
	SaveTimeout   time.Duration `mapstructure:"save_timeout"    validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}
