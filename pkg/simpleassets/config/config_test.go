package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-assets/pkg/simpleassets"
	"github.com/tendant/simple-assets/pkg/simpleassets/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.DatabaseMemory, cfg.DatabaseType)
	assert.Equal(t, config.StorageMemory, cfg.StorageType)
	assert.Equal(t, 4, cfg.PublishWorkers)
	assert.Equal(t, 100, cfg.PublishQueueSize)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoad_Options(t *testing.T) {
	tests := []struct {
		name    string
		opts    []config.Option
		wantErr string
		check   func(t *testing.T, cfg *config.ServerConfig)
	}{
		{
			name: "sqlite database",
			opts: []config.Option{config.WithDatabase(config.DatabaseSQLite, "./data/assets.db")},
			check: func(t *testing.T, cfg *config.ServerConfig) {
				assert.Equal(t, config.DatabaseSQLite, cfg.DatabaseType)
				assert.Equal(t, "./data/assets.db", cfg.DatabaseURL)
			},
		},
		{
			name:    "unknown database",
			opts:    []config.Option{config.WithDatabase("mysql", "x")},
			wantErr: "database type must be 'memory', 'sqlite' or 'postgres', got: mysql",
		},
		{
			name:    "postgres without url",
			opts:    []config.Option{config.WithDatabase(config.DatabasePostgres, "")},
			wantErr: "database URL is required for postgres",
		},
		{
			name: "fs storage",
			opts: []config.Option{config.WithStorage(config.StorageFS, "/tmp/assets")},
			check: func(t *testing.T, cfg *config.ServerConfig) {
				assert.Equal(t, config.StorageFS, cfg.StorageType)
				assert.Equal(t, "/tmp/assets", cfg.StorageDir)
			},
		},
		{
			name:    "s3 storage is not supported",
			opts:    []config.Option{config.WithStorage("s3", "")},
			wantErr: "storage type must be 'memory' or 'fs', got: s3",
		},
		{
			name: "workers",
			opts: []config.Option{config.WithWorkers(8, 500)},
			check: func(t *testing.T, cfg *config.ServerConfig) {
				assert.Equal(t, 8, cfg.PublishWorkers)
				assert.Equal(t, 500, cfg.PublishQueueSize)
			},
		},
		{
			name:    "zero workers",
			opts:    []config.Option{config.WithWorkers(0, 10)},
			wantErr: "workers and queue size must be positive, got 0 and 10",
		},
		{
			name:    "empty port",
			opts:    []config.Option{config.WithPort("")},
			wantErr: "port cannot be empty",
		},
		{
			name:    "bad log level",
			opts:    []config.Option{config.WithLogLevel("chatty")},
			wantErr: `invalid log_level "chatty"`,
		},
		{
			name: "nil options are skipped",
			opts: []config.Option{nil, config.WithEnvironment("production")},
			check: func(t *testing.T, cfg *config.ServerConfig) {
				assert.Equal(t, "production", cfg.Environment)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(tt.opts...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	bad := *cfg
	bad.DatabaseType = config.DatabaseSQLite
	assert.EqualError(t, bad.Validate(), "database_url is required when using sqlite")

	bad = *cfg
	bad.StorageType = config.StorageFS
	bad.StorageDir = " "
	assert.EqualError(t, bad.Validate(), "storage_dir is required when using fs storage")

	bad = *cfg
	bad.ShutdownTimeout = 0
	assert.EqualError(t, bad.Validate(), "shutdown_timeout must be positive")
}

func TestBuildService_SQLiteEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(
		config.WithDatabase(config.DatabaseSQLite, filepath.Join(dir, "db", "assets.db")),
		config.WithAutoMigrate(true),
		config.WithStorage(config.StorageFS, filepath.Join(dir, "blobs")),
		config.WithWorkers(2, 10),
	)
	require.NoError(t, err)

	ctx := context.Background()
	rt, err := cfg.BuildService(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, rt.Start(ctx))
	require.NoError(t, rt.Ready(ctx))

	id, err := rt.Service.Accept(ctx, &simpleassets.Asset{
		Filename:    "cat.png",
		ContentType: "image/png",
		Content:     []byte("png bytes"),
	})
	require.NoError(t, err)

	require.NoError(t, rt.Dispatcher.Stop(5*time.Second))

	asset, err := rt.Service.GetAsset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, simpleassets.AssetStatusCompleted, asset.Status)
	assert.Regexp(t, `^images/[0-9a-f-]{36}-cat\.png$`, asset.URL)

	stored, err := os.ReadFile(filepath.Join(dir, "blobs", filepath.FromSlash(asset.URL)))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(stored))

	version, err := rt.Database.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	families, err := rt.Registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["simpleassets_publish_transitions_total"])
	assert.True(t, names["simpleassets_publish_pool_processed_total"])

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	assert.NoError(t, rt.Shutdown(shutdownCtx))
}

func TestBuildService_MemoryHasNoMigrations(t *testing.T) {
	cfg, err := config.Load(config.WithAutoMigrate(true))
	require.NoError(t, err)

	rt, err := cfg.BuildService(context.Background(), nil)
	require.NoError(t, err)
	defer rt.Shutdown(context.Background())

	assert.ErrorIs(t, rt.Database.MigrateUp(), config.ErrNoSQLDatabase)
	_, err = rt.Database.SchemaVersion()
	assert.ErrorIs(t, err, config.ErrNoSQLDatabase)
	assert.NoError(t, rt.Ready(context.Background()))
}

func TestBuildService_RejectedWhenNotStarted(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	rt, err := cfg.BuildService(context.Background(), nil)
	require.NoError(t, err)

	_, err = rt.Service.Accept(context.Background(), &simpleassets.Asset{
		Filename: "cat.png",
		Content:  []byte("x"),
	})
	assert.ErrorIs(t, err, simpleassets.ErrPublishRejected)
}
