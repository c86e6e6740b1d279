package sluggable

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"github.com/dmitrymomot/sluggable/pkg/logger"
)

const defaultMaxAttempts = 5

// SiblingLookup is implemented by the persistence layer. Fetch returns every
// slug of entityType except the one held by the record identified by
// excludeID, soft-deleted records included. excludeID is empty on create.
type SiblingLookup interface {
	Fetch(ctx context.Context, entityType, excludeID string) (SiblingSet, error)
}

// PersistFunc writes the record with the given slug. It must return an error
// matching ErrSlugConflict when storage rejects a duplicate slug.
type PersistFunc func(ctx context.Context, slug string) error

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithLocker serializes Assign per entity type through l.
func WithLocker(l Locker) Option {
	return func(g *Generator) {
		g.locker = l
	}
}

// WithMaxAttempts bounds how many times Assign persists before giving up on
// conflicts.
// Default: 5
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// Generator is the create/update call site for slugs: it fetches siblings,
// computes the slug and persists it, re-deriving when storage reports a
// conflict from a concurrent writer.
type Generator struct {
	lookup      SiblingLookup
	locker      Locker
	logger      *slog.Logger
	maxAttempts int
}

// New creates a Generator reading siblings from lookup.
func New(lookup SiblingLookup, opts ...Option) *Generator {
	g := &Generator{
		lookup:      lookup,
		logger:      logger.NewNope(),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Slug computes the slug for the record id of entityType without persisting it.
// The lookup is not consulted when the configuration is invalid or the
// current slug is kept.
func (g *Generator) Slug(ctx context.Context, entityType, id string, cfg Config, state State) (string, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if skip(state) {
		return state.Current, nil
	}
	return g.derive(WithEntityType(ctx, entityType), entityType, id, cfg, state, nil)
}

// Assign computes the slug and hands it to persist, immediately before the
// record is written. When persist reports ErrSlugConflict the rejected slug is
// excluded, siblings are fetched again and a new slug is derived, up to the
// configured number of attempts. Any other persist error is returned as is.
//
// A record that keeps its slug is persisted once with the current slug.
func (g *Generator) Assign(ctx context.Context, entityType, id string, cfg Config, state State, persist PersistFunc) (string, error) {
	if persist == nil {
		return "", ErrNilPersist
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	ctx = WithEntityType(ctx, entityType)

	if skip(state) {
		if err := persist(ctx, state.Current); err != nil {
			return "", err
		}
		return state.Current, nil
	}

	ctx, release, err := g.lock(ctx, entityType)
	if err != nil {
		return "", err
	}
	defer release()

	rejected := NewSiblingSet()
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		s, err := g.derive(ctx, entityType, id, cfg, state, rejected)
		if err != nil {
			return "", err
		}

		err = persist(ctx, s)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrSlugConflict) {
			return "", err
		}

		g.logger.WarnContext(ctx, "slug taken concurrently, deriving again",
			slog.String("slug", s),
			slog.Int("attempt", attempt),
		)
		rejected.Add(s)
	}

	return "", ErrTooManyConflicts
}

func (g *Generator) derive(ctx context.Context, entityType, id string, cfg Config, state State, rejected SiblingSet) (string, error) {
	siblings, err := g.lookup.Fetch(ctx, entityType, id)
	if err != nil {
		return "", errors.Join(ErrLookupFailed, err)
	}
	if len(rejected) > 0 {
		merged := make(SiblingSet, siblings.Len()+rejected.Len())
		maps.Copy(merged, siblings)
		maps.Copy(merged, rejected)
		siblings = merged
	}

	s, suffix := derive(cfg, state, siblings)
	if suffix > 0 {
		g.logger.DebugContext(ctx, "slug disambiguated",
			slog.String("slug", s),
			slog.Int("suffix", suffix),
			slog.Int("siblings", siblings.Len()),
		)
	}
	return s, nil
}

// Locked runs fn while holding the lock for entityType. Assign calls made
// with the context passed to fn reuse that lock instead of taking it again,
// so a transaction wrapping Assign can commit before other writers of the
// same entity type read siblings. Without a Locker, fn simply runs.
func (g *Generator) Locked(ctx context.Context, entityType string, fn func(ctx context.Context) error) error {
	ctx, release, err := g.lock(WithEntityType(ctx, entityType), entityType)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

type heldLockKey struct{ entityType string }

// lock acquires the entity type lock unless ctx already holds it. The
// returned context marks the lock as held.
func (g *Generator) lock(ctx context.Context, entityType string) (context.Context, func(), error) {
	if g.locker == nil {
		return ctx, func() {}, nil
	}
	if held, _ := ctx.Value(heldLockKey{entityType}).(bool); held {
		return ctx, func() {}, nil
	}

	unlock, err := g.locker.Lock(ctx, lockKey(entityType))
	if err != nil {
		return ctx, nil, errors.Join(ErrLockFailed, err)
	}
	release := func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			g.logger.WarnContext(ctx, "failed to release slug lock", slog.Any("error", err))
		}
	}
	return context.WithValue(ctx, heldLockKey{entityType}, true), release, nil
}
