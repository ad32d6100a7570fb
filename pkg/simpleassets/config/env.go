package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// WithEnv reads the environment variables named in ServerConfig's env tags.
// Variables that are unset leave the current value alone, so options applied
// earlier survive.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithDotEnv loads .env files into the process environment. Missing files are
// skipped and variables that are already set are not overridden. Apply it
// before WithEnv.
func WithDotEnv(paths ...string) Option {
	return func(c *ServerConfig) error {
		if len(paths) == 0 {
			paths = []string{".env"}
		}
		for _, path := range paths {
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err := godotenv.Load(path); err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
		return nil
	}
}

// Usage describes every supported environment variable.
func Usage() (string, error) {
	var cfg ServerConfig
	return cleanenv.GetDescription(&cfg, nil)
}
