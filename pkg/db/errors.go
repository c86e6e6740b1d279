package db

import (
	"errors"
	"slices"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToParseDBConfig    = errors.New("db: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
	ErrMigrationStore           = errors.New("db: failed to set up migration store")
	ErrApplyMigrations          = errors.New("db: failed to apply migrations")
)

// uniqueViolation is the SQLSTATE PostgreSQL raises for a duplicate key.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err carries a PostgreSQL unique violation.
// With constraints given, only violations of one of the named constraints match.
func IsUniqueViolation(err error, constraints ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return len(constraints) == 0 || slices.Contains(constraints, pgErr.ConstraintName)
}
