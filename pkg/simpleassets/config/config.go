package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Supported backends.
const (
	DatabaseMemory   = "memory"
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"

	StorageMemory = "memory"
	StorageFS     = "fs"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:             "8080",
		Environment:      "development",
		LogLevel:         "info",
		DatabaseType:     DatabaseMemory,
		StorageType:      StorageMemory,
		StorageDir:       "./data/storage",
		PublishWorkers:   4,
		PublishQueueSize: 100,
		ShutdownTimeout:  10 * time.Second,
		RequestTimeout:   60 * time.Second,
		MaxRequestBytes:  32 << 20,
	}
}

// ServerConfig represents server configuration for the simple-assets service.
// The env-default tags mirror defaults() and feed cleanenv's usage output.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080" env-description:"HTTP listen port"`
	Environment string `env:"ENVIRONMENT" env-default:"development" env-description:"development, production or testing"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	SentryDSN   string `env:"SENTRY_DSN" env-description:"Sentry DSN for error reporting"`

	// Database configuration
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory" env-description:"memory, sqlite or postgres"`
	DatabaseURL  string `env:"DATABASE_URL" env-description:"sqlite file path or postgres connection string"`
	DBSchema     string `env:"DB_SCHEMA" env-description:"postgres search_path"`
	AutoMigrate  bool   `env:"AUTO_MIGRATE" env-description:"apply migrations on startup"`

	// Storage configuration
	StorageType string `env:"STORAGE_TYPE" env-default:"memory" env-description:"memory or fs"`
	StorageDir  string `env:"STORAGE_DIR" env-default:"./data/storage" env-description:"base directory for fs storage"`

	// Publishing
	PublishWorkers   int `env:"PUBLISH_WORKERS" env-default:"4" env-description:"concurrent publish workers"`
	PublishQueueSize int `env:"PUBLISH_QUEUE_SIZE" env-default:"100" env-description:"accepted uploads waiting for a worker"`

	// HTTP server
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s" env-description:"graceful shutdown deadline"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"60s" env-description:"per-request timeout"`
	MaxRequestBytes int64         `env:"MAX_REQUEST_BYTES" env-default:"33554432" env-description:"upload body limit"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	switch c.DatabaseType {
	case DatabaseMemory:
	case DatabaseSQLite:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using sqlite")
		}
	case DatabasePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	default:
		return fmt.Errorf("database_type must be 'memory', 'sqlite' or 'postgres', got: %s", c.DatabaseType)
	}

	switch c.StorageType {
	case StorageMemory:
	case StorageFS:
		if strings.TrimSpace(c.StorageDir) == "" {
			return errors.New("storage_dir is required when using fs storage")
		}
	default:
		return fmt.Errorf("storage_type must be 'memory' or 'fs', got: %s", c.StorageType)
	}

	if c.PublishWorkers <= 0 {
		return errors.New("publish_workers must be positive")
	}
	if c.PublishQueueSize <= 0 {
		return errors.New("publish_queue_size must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be positive")
	}
	if c.MaxRequestBytes <= 0 {
		return errors.New("max_request_bytes must be positive")
	}

	return nil
}
