package backfill

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/dmitrymomot/sluggable/pkg/logger"
)

// ErrMigrateQueue wraps failures creating River's job tables.
var ErrMigrateQueue = errors.New("backfill: failed to migrate job queue schema")

// Migrate creates or upgrades River's tables (river_job and friends). It must
// run before the client returned by NewClient is started or used to Enqueue;
// River does not check its schema on Start. Already applied versions are
// skipped, so it is safe on every boot.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	if pool == nil {
		return ErrPoolRequired
	}
	if log == nil {
		log = logger.NewNope()
	}

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), &rivermigrate.Config{Logger: log})
	if err != nil {
		return errors.Join(ErrMigrateQueue, err)
	}

	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return errors.Join(ErrMigrateQueue, err)
	}
	for _, v := range res.Versions {
		log.InfoContext(ctx, "job queue migration applied",
			slog.Int("version", v.Version),
			slog.String("name", v.Name),
			slog.Duration("duration", v.Duration),
		)
	}
	return nil
}
