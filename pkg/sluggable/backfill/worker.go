// Package backfill assigns slugs to records that were stored without one,
// as River jobs running through the same sluggable.Generator used on writes.
//
// River keeps its jobs in PostgreSQL tables that must exist before the client
// starts:
//
//	if err := backfill.Migrate(ctx, pool, log); err != nil {
//		return err
//	}
//	client, err := backfill.NewClient(pool, worker, backfill.WithSchedule("0 * * * *", "articles"))
package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/dmitrymomot/sluggable/pkg/logger"
	"github.com/dmitrymomot/sluggable/pkg/sluggable"
)

const defaultBatchSize = 100

// Args is the job payload: one job backfills one entity type.
type Args struct {
	EntityType string `json:"entity_type"`
}

func (Args) Kind() string { return "sluggable:backfill" }

// InsertOpts keeps at most one pending backfill per entity type.
func (Args) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		UniqueOpts: river.UniqueOpts{ByArgs: true},
	}
}

// Record is a stored entity without a slug.
type Record struct {
	ID     string
	Fields []sluggable.Field
}

// Source lists records missing a slug and writes the assigned one.
// SetSlug must return an error matching sluggable.ErrSlugConflict when the
// slug is already held by another record.
type Source interface {
	Pending(ctx context.Context, entityType string, limit int) ([]Record, error)
	SetSlug(ctx context.Context, entityType, id, slug string) error
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithBatchSize sets how many records are read per query.
// Default: 100
func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithWorkerLogger sets the logger. Default: discard.
func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// Worker processes backfill jobs.
type Worker struct {
	river.WorkerDefaults[Args]

	gen       *sluggable.Generator
	registry  sluggable.Registry
	source    Source
	logger    *slog.Logger
	batchSize int
}

// NewWorker creates a Worker that derives slugs with gen using the per-type
// configurations in registry.
func NewWorker(gen *sluggable.Generator, registry sluggable.Registry, source Source, opts ...WorkerOption) *Worker {
	w := &Worker{
		gen:       gen,
		registry:  registry,
		source:    source,
		logger:    logger.NewNope(),
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run assigns a slug to every pending record of entityType and returns how
// many were written. Records deleted while the job runs are skipped.
func (w *Worker) Run(ctx context.Context, entityType string) (int, error) {
	cfg, err := w.registry.Get(entityType)
	if err != nil {
		return 0, err
	}

	ctx = sluggable.WithEntityType(ctx, entityType)
	assigned := 0
	for {
		records, err := w.source.Pending(ctx, entityType, w.batchSize)
		if err != nil {
			return assigned, fmt.Errorf("backfill: list pending records: %w", err)
		}
		if len(records) == 0 {
			return assigned, nil
		}

		for _, rec := range records {
			state := sluggable.State{Changed: true, Fields: rec.Fields}
			_, err := w.gen.Assign(ctx, entityType, rec.ID, cfg, state, func(ctx context.Context, slug string) error {
				return w.source.SetSlug(ctx, entityType, rec.ID, slug)
			})
			switch {
			case errors.Is(err, sluggable.ErrRecordNotFound):
				w.logger.DebugContext(ctx, "record vanished during backfill", slog.String("id", rec.ID))
				continue
			case err != nil:
				return assigned, fmt.Errorf("backfill: record %s: %w", rec.ID, err)
			}
			assigned++
		}
	}
}

// Work implements river.Worker. Configuration errors cancel the job since
// retrying cannot fix them.
func (w *Worker) Work(ctx context.Context, job *river.Job[Args]) error {
	n, err := w.Run(ctx, job.Args.EntityType)
	if err != nil {
		if errors.Is(err, sluggable.ErrConfiguration) || errors.Is(err, sluggable.ErrUnknownEntityType) {
			w.logger.ErrorContext(ctx, "backfill cancelled",
				slog.String("entity_type", job.Args.EntityType),
				slog.Any("error", err),
			)
			return river.JobCancel(err)
		}
		return err
	}

	w.logger.InfoContext(ctx, "backfill completed",
		slog.String("entity_type", job.Args.EntityType),
		slog.Int("assigned", n),
		slog.Int64("job_id", job.ID),
	)
	return nil
}
