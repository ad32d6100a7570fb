package simpleassets

import (
	"context"
	"time"

	"github.com/tendant/simple-assets/pkg/worker"
)

// GoDispatcher publishes each asset on its own goroutine. It never rejects.
type GoDispatcher struct {
	publisher *Publisher
	ctx       context.Context
}

// NewGoDispatcher creates a dispatcher that spawns one goroutine per asset.
// ctx is passed to every publish and should outlive the request.
func NewGoDispatcher(ctx context.Context, publisher *Publisher) *GoDispatcher {
	return &GoDispatcher{publisher: publisher, ctx: ctx}
}

func (d *GoDispatcher) Dispatch(asset *Asset) error {
	a := *asset
	go d.publisher.Publish(d.ctx, &a)
	return nil
}

// PoolDispatcher submits assets to a bounded worker pool. Dispatch fails with
// worker.ErrQueueFull, worker.ErrPoolStopped or worker.ErrPoolNotStarted when
// the pool refuses the work.
type PoolDispatcher struct {
	pool *worker.Pool[*Asset]
}

// NewPoolDispatcher creates a pool of workers running publisher.Publish.
func NewPoolDispatcher(publisher *Publisher, workers, queueSize int, opts ...worker.Option[*Asset]) *PoolDispatcher {
	process := func(ctx context.Context, asset *Asset) error {
		publisher.Publish(ctx, asset)
		return nil
	}
	return &PoolDispatcher{
		pool: worker.NewPool(workers, queueSize, process, opts...),
	}
}

func (d *PoolDispatcher) Dispatch(asset *Asset) error {
	a := *asset
	return d.pool.Submit(&a)
}

// Start launches the pool workers.
func (d *PoolDispatcher) Start(ctx context.Context) error {
	return d.pool.Start(ctx)
}

// Stop drains queued assets and waits up to timeout for workers to finish.
func (d *PoolDispatcher) Stop(timeout time.Duration) error {
	return d.pool.Stop(timeout)
}

// Stats reports pool counters.
func (d *PoolDispatcher) Stats() worker.PoolStats {
	return d.pool.Stats()
}
