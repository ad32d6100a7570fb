package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/simple-assets/internal/logger"
	"github.com/tendant/simple-assets/pkg/simpleassets/api"
	"github.com/tendant/simple-assets/pkg/simpleassets/config"
)

func main() {
	cfg, err := config.Load(config.WithDotEnv(), config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.Init(cfg.Environment, cfg.LogLevel, cfg.SentryDSN)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Flush(2 * time.Second)

	if err := run(cfg, logr); err != nil {
		logr.Error("server exited with error", "error", err)
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}
}

func run(cfg *config.ServerConfig, logr *slog.Logger) error {
	// Publishing outlives individual requests, so it gets its own context.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	rt, err := cfg.BuildService(workerCtx, logr)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	handler, err := setup(workerCtx, cfg, logr, rt)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"database_type", cfg.DatabaseType,
			"storage_type", cfg.StorageType,
			"publish_workers", cfg.PublishWorkers)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logr.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			rt.Shutdown(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Stop taking uploads before draining the publish queue.
	if err := server.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", "error", err)
	}
	if err := rt.Shutdown(ctx); err != nil {
		logr.Error("publish queue not drained", "error", err, "stats", rt.Dispatcher.Stats())
	}

	logr.Info("server exiting")
	return nil
}

// setup starts the publish workers and builds the HTTP handler. On failure the
// runtime is shut down so the pool and database are released.
func setup(ctx context.Context, cfg *config.ServerConfig, logr *slog.Logger, rt *config.Runtime) (_ http.Handler, err error) {
	defer func() {
		if err != nil {
			if shutdownErr := rt.Shutdown(context.Background()); shutdownErr != nil {
				logr.Error("failed to release runtime", "error", shutdownErr)
			}
		}
	}()

	if err := rt.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start publish workers: %w", err)
	}

	httpMetrics, err := api.NewHTTPMetrics(rt.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register http metrics: %w", err)
	}

	return api.NewRouter(rt.Service, api.RouterOptions{
		Logger:          logr,
		Metrics:         httpMetrics,
		Gatherer:        rt.Registry,
		MaxRequestBytes: cfg.MaxRequestBytes,
		RequestTimeout:  cfg.RequestTimeout,
		Ready:           rt.Ready,
	}), nil
}
