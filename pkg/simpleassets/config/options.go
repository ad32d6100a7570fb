package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithLogLevel sets the minimum log level
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		c.LogLevel = level
		return nil
	}
}

// WithDatabase configures the database backend. url is a file path for
// sqlite and a connection string for postgres.
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case DatabaseMemory, DatabaseSQLite, DatabasePostgres:
		default:
			return fmt.Errorf("database type must be 'memory', 'sqlite' or 'postgres', got: %s", dbType)
		}
		if dbType != DatabaseMemory && url == "" {
			return fmt.Errorf("database URL is required for %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the postgres search_path
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate applies migrations when the runtime is built
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithStorage configures the blob store. dir is only used by fs.
func WithStorage(storageType, dir string) Option {
	return func(c *ServerConfig) error {
		switch storageType {
		case StorageMemory:
		case StorageFS:
			if dir == "" {
				return fmt.Errorf("storage directory is required for fs")
			}
			c.StorageDir = dir
		default:
			return fmt.Errorf("storage type must be 'memory' or 'fs', got: %s", storageType)
		}
		c.StorageType = storageType
		return nil
	}
}

// WithWorkers sizes the publish pool
func WithWorkers(workers, queueSize int) Option {
	return func(c *ServerConfig) error {
		if workers <= 0 || queueSize <= 0 {
			return fmt.Errorf("workers and queue size must be positive, got %d and %d", workers, queueSize)
		}
		c.PublishWorkers = workers
		c.PublishQueueSize = queueSize
		return nil
	}
}

// WithShutdownTimeout sets how long shutdown waits for requests and publishes
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *ServerConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("shutdown timeout must be positive")
		}
		c.ShutdownTimeout = timeout
		return nil
	}
}
