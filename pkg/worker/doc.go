// Package worker provides a bounded, generic worker pool.
//
// Work is submitted without blocking; when the queue is full Submit returns
// ErrQueueFull and the caller decides what to do with the item. Stop closes
// the queue, lets workers drain what was already accepted and waits up to a
// timeout for them to exit.
//
//	pool := worker.NewPool(4, 100, func(ctx context.Context, job Job) error {
//		return job.Run(ctx)
//	}, worker.WithMetrics[Job](prometheus.DefaultRegisterer, "jobs"))
//	if err := pool.Start(ctx); err != nil {
//		return err
//	}
//	defer pool.Stop(10 * time.Second)
package worker
