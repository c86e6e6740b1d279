package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sluggable/pkg/db"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "articles_slug_key"}

	tests := []struct {
		name        string
		err         error
		constraints []string
		expected    bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "plain error", err: errors.New("boom"), expected: false},
		{name: "other sqlstate", err: &pgconn.PgError{Code: "23503"}, expected: false},
		{name: "unique violation", err: dup, expected: true},
		{name: "wrapped", err: fmt.Errorf("insert: %w", dup), expected: true},
		{name: "joined", err: errors.Join(errors.New("ctx"), dup), expected: true},
		{name: "matching constraint", err: dup, constraints: []string{"articles_slug_key"}, expected: true},
		{name: "other constraint", err: dup, constraints: []string{"articles_pkey"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, db.IsUniqueViolation(tt.err, tt.constraints...))
		})
	}
}

func TestConnect_InvalidConnectionString(t *testing.T) {
	t.Parallel()

	_, err := db.Connect(context.Background(), db.DefaultConfig("not a url ::"))
	require.ErrorIs(t, err, db.ErrFailedToParseDBConfig)
}

func TestHealthcheck_NilPool(t *testing.T) {
	t.Parallel()

	err := db.Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, db.ErrHealthcheckFailed)
}
