package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendant/simple-assets/pkg/simpleassets"
)

// AssetsBasePath is where AssetsHandler.Routes is mounted.
const AssetsBasePath = "/api/mgmt/1/assets"

// RouterOptions configures NewRouter. Zero values disable the optional parts.
type RouterOptions struct {
	Logger          *slog.Logger
	Metrics         *HTTPMetrics
	Gatherer        prometheus.Gatherer
	MaxRequestBytes int64
	RequestTimeout  time.Duration
	Ready           func(ctx context.Context) error
}

// NewRouter builds the service's full HTTP surface: health checks, metrics
// and the asset endpoints.
func NewRouter(service simpleassets.Service, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(RecoveryMiddleware(logger))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})
	r.Get("/healthz/ready", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(r.Context()); err != nil {
				logger.Warn("readiness check failed", "error", err)
				render.Status(r, http.StatusServiceUnavailable)
				render.PlainText(w, r, http.StatusText(http.StatusServiceUnavailable))
				return
			}
		}
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	handler := NewAssetsHandler(service, logger)
	r.Group(func(r chi.Router) {
		if opts.MaxRequestBytes > 0 {
			r.Use(RequestSizeLimitMiddleware(opts.MaxRequestBytes))
		}
		r.Mount(AssetsBasePath, handler.Routes())
	})

	return r
}
