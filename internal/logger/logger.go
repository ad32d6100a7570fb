// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// New builds a stdout-style handler without Sentry.
// Development: text format. Anything else: JSON.
func New(w io.Writer, environment, level string) *slog.Logger {
	return slog.New(newHandler(w, environment, level))
}

// Init installs the default logger. When sentryDSN is set, error records are
// also sent to Sentry.
func Init(environment, level, sentryDSN string) (*slog.Logger, error) {
	handler := newHandler(os.Stdout, environment, level)

	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         sentryDSN,
			Environment: environment,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
		handler = slogmulti.Fanout(
			handler,
			slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(),
		)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log, nil
}

// Flush waits for buffered Sentry events. It is a no-op without Sentry.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// ParseLevel maps debug, info, warn and error (any case) to slog levels.
// Unknown values fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(w io.Writer, environment, level string) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if environment == "development" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
