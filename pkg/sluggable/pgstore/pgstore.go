// Package pgstore reads and writes slugs in PostgreSQL tables.
//
// Lookup implements sluggable.SiblingLookup for every registered table and
// backfill.Source for tables that declare their source columns. Sibling
// queries never filter on deleted_at, so soft-deleted rows keep their slugs
// reserved.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/sluggable/pkg/db"
	"github.com/dmitrymomot/sluggable/pkg/sluggable"
	"github.com/dmitrymomot/sluggable/pkg/sluggable/backfill"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Table maps an entity type to its storage.
type Table struct {
	Name       string
	IDColumn   string // default "id"
	SlugColumn string // default "slug"
	// SourceColumns are read by Pending. Each column is reported as a
	// sluggable.Field of the same name.
	SourceColumns []string
}

func (t Table) withDefaults() Table {
	if t.IDColumn == "" {
		t.IDColumn = "id"
	}
	if t.SlugColumn == "" {
		t.SlugColumn = "slug"
	}
	return t
}

// Option configures a Lookup.
type Option func(*Lookup)

// WithTable registers the table backing entityType.
func WithTable(entityType string, t Table) Option {
	return func(l *Lookup) {
		l.tables[entityType] = t.withDefaults()
	}
}

// Lookup queries registered tables through a Querier.
type Lookup struct {
	db     Querier
	tables map[string]Table
}

// New creates a Lookup on q.
func New(q Querier, opts ...Option) *Lookup {
	l := &Lookup{db: q, tables: make(map[string]Table)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch returns every non-empty slug of entityType except excludeID's,
// soft-deleted rows included.
func (l *Lookup) Fetch(ctx context.Context, entityType, excludeID string) (sluggable.SiblingSet, error) {
	t, err := l.table(entityType)
	if err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, siblingsQuery(t), excludeID)
	if err != nil {
		return nil, err
	}
	slugs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return sluggable.NewSiblingSet(slugs...), nil
}

// Pending returns up to limit records of entityType that have no slug yet.
func (l *Lookup) Pending(ctx context.Context, entityType string, limit int) ([]backfill.Record, error) {
	t, err := l.table(entityType)
	if err != nil {
		return nil, err
	}
	if len(t.SourceColumns) == 0 {
		return nil, fmt.Errorf("pgstore: table %q declares no source columns: %w", t.Name, sluggable.ErrNoSourceFields)
	}

	rows, err := l.db.Query(ctx, pendingQuery(t), limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (backfill.Record, error) {
		var id string
		values := make([]string, len(t.SourceColumns))
		dest := make([]any, 0, len(values)+1)
		dest = append(dest, &id)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := row.Scan(dest...); err != nil {
			return backfill.Record{}, err
		}

		fields := make([]sluggable.Field, len(values))
		for i, col := range t.SourceColumns {
			fields[i] = sluggable.Field{Name: col, Value: values[i]}
		}
		return backfill.Record{ID: id, Fields: fields}, nil
	})
}

// SetSlug writes slug to record id. A duplicate slug yields
// sluggable.ErrSlugConflict; a missing row yields sluggable.ErrRecordNotFound.
func (l *Lookup) SetSlug(ctx context.Context, entityType, id, slug string) error {
	t, err := l.table(entityType)
	if err != nil {
		return err
	}

	tag, err := l.db.Exec(ctx, updateQuery(t), id, slug)
	if err != nil {
		return MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return sluggable.ErrRecordNotFound
	}
	return nil
}

// MapError turns a PostgreSQL unique violation into sluggable.ErrSlugConflict,
// keeping the driver error in the chain. Other errors pass through.
func MapError(err error) error {
	if db.IsUniqueViolation(err) {
		return errors.Join(sluggable.ErrSlugConflict, err)
	}
	return err
}

func (l *Lookup) table(entityType string) (Table, error) {
	t, ok := l.tables[entityType]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", sluggable.ErrUnknownEntityType, entityType)
	}
	return t, nil
}

func ident(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func siblingsQuery(t Table) string {
	slug := ident(t.SlugColumn)
	return fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s::text <> $1 AND %s IS NOT NULL AND %s <> ''",
		slug, ident(t.Name), ident(t.IDColumn), slug, slug,
	)
}

func pendingQuery(t Table) string {
	cols := make([]string, len(t.SourceColumns))
	for i, c := range t.SourceColumns {
		cols[i] = fmt.Sprintf("COALESCE(%s::text, '')", ident(c))
	}
	id := ident(t.IDColumn)
	slug := ident(t.SlugColumn)
	return fmt.Sprintf(
		"SELECT %s::text, %s FROM %s WHERE %s IS NULL OR %s = '' ORDER BY %s LIMIT $1",
		id, strings.Join(cols, ", "), ident(t.Name), slug, slug, id,
	)
}

func updateQuery(t Table) string {
	return fmt.Sprintf(
		"UPDATE %s SET %s = $2 WHERE %s::text = $1",
		ident(t.Name), ident(t.SlugColumn), ident(t.IDColumn),
	)
}

var (
	_ sluggable.SiblingLookup = (*Lookup)(nil)
	_ backfill.Source         = (*Lookup)(nil)
)
