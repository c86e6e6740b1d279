package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/sluggable/pkg/logger"
)

var (
	ErrPoolRequired    = errors.New("backfill: database pool is required")
	ErrInvalidSchedule = errors.New("backfill: invalid cron schedule")
	ErrEmptyEntityType = errors.New("backfill: entity type is required")
)

type schedule struct {
	expr        string
	entityTypes []string
}

type clientConfig struct {
	logger     *slog.Logger
	schedules  []schedule
	maxWorkers int
}

// ClientOption configures NewClient.
type ClientOption func(*clientConfig)

// WithSchedule enqueues a backfill for each entity type on the 5-field cron
// expression.
func WithSchedule(expr string, entityTypes ...string) ClientOption {
	return func(c *clientConfig) {
		c.schedules = append(c.schedules, schedule{expr: expr, entityTypes: entityTypes})
	}
}

// WithMaxWorkers sets the default queue concurrency.
// Default: 2
func WithMaxWorkers(n int) ClientOption {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithClientLogger sets the River client logger. Default: discard.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a River client that runs w. Start it with client.Start
// and stop it with client.Stop.
func NewClient(pool *pgxpool.Pool, w *Worker, opts ...ClientOption) (*river.Client[pgx.Tx], error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := &clientConfig{logger: logger.NewNope(), maxWorkers: 2}
	for _, opt := range opts {
		opt(cfg)
	}

	periodic, err := periodicJobs(cfg.schedules)
	if err != nil {
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, w)

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: cfg.maxWorkers}},
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("backfill: create client: %w", err)
	}
	return client, nil
}

// Enqueue schedules a backfill of entityType now.
func Enqueue(ctx context.Context, client *river.Client[pgx.Tx], entityType string) error {
	if entityType == "" {
		return ErrEmptyEntityType
	}
	if _, err := client.Insert(ctx, Args{EntityType: entityType}, nil); err != nil {
		return fmt.Errorf("backfill: enqueue: %w", err)
	}
	return nil
}

func periodicJobs(schedules []schedule) ([]*river.PeriodicJob, error) {
	var jobs []*river.PeriodicJob
	for _, s := range schedules {
		sched, err := parseSchedule(s.expr)
		if err != nil {
			return nil, err
		}
		for _, et := range s.entityTypes {
			if et == "" {
				return nil, ErrEmptyEntityType
			}
			jobs = append(jobs, river.NewPeriodicJob(
				sched,
				func() (river.JobArgs, *river.InsertOpts) {
					return Args{EntityType: et}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: false},
			))
		}
	}
	return jobs, nil
}

type cronSchedule struct {
	schedule cron.Schedule
}

func (c cronSchedule) Next(t time.Time) time.Time {
	return c.schedule.Next(t)
}

func parseSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s, err := parser.Parse(expr)
	if err != nil {
		return nil, errors.Join(ErrInvalidSchedule, fmt.Errorf("%q: %w", expr, err))
	}
	return cronSchedule{schedule: s}, nil
}
