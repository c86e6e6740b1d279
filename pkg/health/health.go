// Package health serves readiness checks for the slug storage backends.
//
//	r.Get("/healthz", health.Handler(health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//	}))
//
// Checks run concurrently under a shared timeout. The endpoint answers 200
// when every check passes and 503 otherwise.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sluggable/pkg/logger"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports a dependency as unhealthy by returning an error.
type CheckFunc func(ctx context.Context) error

// Checks maps dependency names to their checks.
type Checks map[string]CheckFunc

// Response is the JSON body of the endpoint.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of one CheckFunc.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures Handler.
type Option func(*config)

// WithTimeout bounds all checks together.
// Default: 2s
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failing checks at Warn. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes checks and aggregates their results.
func Run(ctx context.Context, checks Checks, opts ...Option) Response {
	cfg := &config{timeout: 2 * time.Second, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		g   errgroup.Group
		mu  sync.Mutex
		res = Response{Status: StatusHealthy, Checks: make(map[string]Check, len(checks))}
	)
	for name, check := range checks {
		g.Go(func() error {
			c := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				c = Check{Status: StatusUnhealthy, Error: err.Error()}
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Any("error", err),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			res.Checks[name] = c
			if c.Status == StatusUnhealthy {
				res.Status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()

	return res
}

// Handler serves Run as JSON.
func Handler(checks Checks, opts ...Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := Run(r.Context(), checks, opts...)

		status := http.StatusOK
		if res.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(res)
	}
}
