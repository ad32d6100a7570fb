package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-assets/pkg/simpleassets"
	"github.com/tendant/simple-assets/pkg/simpleassets/api"
	"github.com/tendant/simple-assets/pkg/simpleassets/config"
	"github.com/tendant/simple-assets/pkg/worker"
)

func newRuntime(t *testing.T) (*config.ServerConfig, *config.Runtime) {
	t.Helper()
	cfg, err := config.Load(
		config.WithDatabase(config.DatabaseSQLite, filepath.Join(t.TempDir(), "assets.db")),
		config.WithAutoMigrate(true),
	)
	require.NoError(t, err)

	rt, err := cfg.BuildService(context.Background(), nil)
	require.NoError(t, err)
	return cfg, rt
}

func assertReleased(t *testing.T, rt *config.Runtime) {
	t.Helper()
	err := rt.Dispatcher.Dispatch(&simpleassets.Asset{ID: 1, Filename: "a.png"})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
	assert.Error(t, rt.Ready(context.Background()), "database is closed")
}

func TestSetup(t *testing.T) {
	cfg, rt := newRuntime(t)

	handler, err := setup(context.Background(), cfg, slog.Default(), rt)
	require.NoError(t, err)
	assert.NotNil(t, handler)
	assert.NoError(t, rt.Ready(context.Background()))
	require.NoError(t, rt.Shutdown(context.Background()))
}

func TestSetup_ReleasesRuntimeWhenMetricsFail(t *testing.T) {
	cfg, rt := newRuntime(t)
	_, err := api.NewHTTPMetrics(rt.Registry)
	require.NoError(t, err)

	_, err = setup(context.Background(), cfg, slog.Default(), rt)
	require.ErrorContains(t, err, "failed to register http metrics")
	assertReleased(t, rt)
}

func TestSetup_ReleasesRuntimeWhenStartFails(t *testing.T) {
	cfg, rt := newRuntime(t)
	require.NoError(t, rt.Start(context.Background()))

	_, err := setup(context.Background(), cfg, slog.Default(), rt)
	require.ErrorIs(t, err, worker.ErrPoolAlreadyStarted)
	assertReleased(t, rt)
}
