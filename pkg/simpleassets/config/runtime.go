package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tendant/simple-assets/pkg/simpleassets"
	fsstorage "github.com/tendant/simple-assets/pkg/simpleassets/storage/fs"
	memorystorage "github.com/tendant/simple-assets/pkg/simpleassets/storage/memory"
	"github.com/tendant/simple-assets/pkg/worker"
)

// Runtime holds the wired components of a running service.
type Runtime struct {
	Service    simpleassets.Service
	Database   *Database
	BlobStore  simpleassets.BlobStore
	Dispatcher *simpleassets.PoolDispatcher
	Registry   *prometheus.Registry
}

// BuildService wires the repository, blob store, metrics, publisher, worker
// pool and service described by the configuration. The dispatcher is not
// started; call Runtime.Start.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := c.OpenDatabase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	if c.AutoMigrate && db.Type != DatabaseMemory {
		if err := db.MigrateUp(); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("database migrations applied", "database_type", db.Type)
	}

	store, err := c.buildBlobStore()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hook, err := simpleassets.NewTransitionMetrics(reg)
	if err != nil {
		db.Close()
		return nil, err
	}

	publisher, err := simpleassets.NewPublisher(db.Repository,
		simpleassets.WithPublisherBlobStore(store),
		simpleassets.WithStatusChangeHook(hook),
		simpleassets.WithPublisherLogger(logger),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	dispatcher := simpleassets.NewPoolDispatcher(publisher, c.PublishWorkers, c.PublishQueueSize,
		worker.WithMetrics[*simpleassets.Asset](reg, "simpleassets_publish_pool"),
		worker.WithLogger[*simpleassets.Asset](logger),
	)

	svc, err := simpleassets.New(
		simpleassets.WithRepository(db.Repository),
		simpleassets.WithDispatcher(dispatcher),
		simpleassets.WithLogger(logger),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Runtime{
		Service:    svc,
		Database:   db,
		BlobStore:  store,
		Dispatcher: dispatcher,
		Registry:   reg,
	}, nil
}

func (c *ServerConfig) buildBlobStore() (simpleassets.BlobStore, error) {
	switch c.StorageType {
	case StorageMemory:
		return memorystorage.New(), nil
	case StorageFS:
		return fsstorage.New(fsstorage.Config{BaseDir: c.StorageDir})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}

// Start launches the publish workers. ctx is handed to every publish.
func (r *Runtime) Start(ctx context.Context) error {
	return r.Dispatcher.Start(ctx)
}

// Ready reports whether the runtime can serve requests.
func (r *Runtime) Ready(ctx context.Context) error {
	return r.Database.Ping(ctx)
}

// Shutdown drains the publish queue and closes the database. If workers are
// still running when the deadline passes the database is left open so they
// can still record COMPLETED or FAILED; uploads never picked up stay PENDING.
func (r *Runtime) Shutdown(ctx context.Context) error {
	timeout := defaults().ShutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	if err := r.Dispatcher.Stop(timeout); err != nil {
		if errors.Is(err, worker.ErrStopTimeout) {
			return fmt.Errorf("publish workers did not drain: %w", err)
		}
		return err
	}
	r.Database.Close()
	return nil
}
