// Package db provides the PostgreSQL plumbing slug storage sits on.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with a retrying Connect, a
// readiness Healthcheck, goose migrations and a WithTx helper, and it
// recognises unique-index violations so callers can turn them into slug
// conflicts.
//
// # Usage
//
//	pool, err := db.Connect(ctx, db.DefaultConfig(os.Getenv("DATABASE_CONN_URL")))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	sub, _ := fs.Sub(migrations, "migrations")
//	if err := db.Migrate(ctx, pool, sub, "schema_migrations", logger); err != nil {
//		log.Fatal(err)
//	}
//
// # Unique Violations
//
// A unique index on the slug column is the backstop against two writers
// picking the same slug. IsUniqueViolation detects SQLSTATE 23505, optionally
// restricted to named constraints:
//
//	if db.IsUniqueViolation(err, "articles_slug_key") {
//		return sluggable.ErrSlugConflict
//	}
//
// # Error Handling
//
// Failures are reported with the sentinels [ErrFailedToParseDBConfig],
// [ErrFailedToOpenDBConnection], [ErrHealthcheckFailed], [ErrMigrationStore] and
// [ErrApplyMigrations], joined with the underlying error via [errors.Join].
package db
