// Package sluggable derives unique, URL-safe slugs for records of a data-model
// layer.
//
// On every create or update the persistence layer calls the Generator right
// before writing the record. The slug is built from an ordered list of source
// fields, must differ from every other record of the same type (soft-deleted
// ones included), and may never be one of the configured reserved values.
// Collisions are resolved with a numeric suffix: "hello-world",
// "hello-world-1", "hello-world-2", …
//
// # Computing a slug
//
// Compute is the pure core. It takes the configuration, the entity's state and
// the set of sibling slugs:
//
//	cfg := sluggable.Config{SourceFields: []string{"title"}}
//	state := sluggable.State{
//		Changed: true,
//		Fields:  []sluggable.Field{{Name: "title", Value: "Hello World"}},
//	}
//	s, err := sluggable.Compute(cfg, state, sluggable.NewSiblingSet("hello-world"))
//	// s == "hello-world-1"
//
// An entity that already has a slug keeps it as long as none of its source
// fields changed, so editing unrelated fields never moves a URL.
//
// # Assigning and persisting
//
// Generator wraps Compute with a SiblingLookup and the write itself:
//
//	gen := sluggable.New(lookup,
//		sluggable.WithLogger(log),
//		sluggable.WithLocker(redis.NewLocker(client)),
//	)
//
//	s, err := gen.Assign(ctx, "articles", id, cfg, state, func(ctx context.Context, s string) error {
//		return pgstore.MapError(repo.Save(ctx, id, s))
//	})
//
// Checking siblings and then writing is not atomic. Two writers deriving the
// same base at once can both see the same free candidate. Storage must back the
// slug column with a unique index and report violations as ErrSlugConflict;
// Assign then excludes the rejected slug and derives again. A Locker, when
// configured, serializes assignment per entity type so conflicts become rare.
//
// # Configuration
//
// Config.Validate fails with ErrConfiguration when no source fields are set or
// when the slug field lists itself as a source. These errors are raised before
// any lookup and are never retried. Reserved defaults to DefaultReserved when
// nil. When the source text has no letters or digits, Fallback ("untitled" by
// default) is used as the base so a slug is never empty.
//
// Per-type configurations can be loaded from YAML with LoadConfigs.
package sluggable
