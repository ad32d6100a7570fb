package worker

import "errors"

var (
	// ErrPoolNotStarted is returned by Submit before Start.
	ErrPoolNotStarted = errors.New("worker pool not started")

	// ErrPoolStopped is returned by Submit once Stop has been called.
	ErrPoolStopped = errors.New("worker pool stopped")

	ErrPoolAlreadyStarted = errors.New("worker pool already started")

	// ErrQueueFull is returned when the bounded queue cannot take more work.
	ErrQueueFull = errors.New("worker pool queue full")

	ErrNilProcessor = errors.New("processor function cannot be nil")

	// ErrStopTimeout is returned when in-flight work outlives the Stop timeout.
	ErrStopTimeout = errors.New("timeout waiting for workers to stop")
)
