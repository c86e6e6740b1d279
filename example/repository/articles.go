package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/sluggable/pkg/db"
	"github.com/dmitrymomot/sluggable/pkg/sluggable"
	"github.com/dmitrymomot/sluggable/pkg/sluggable/pgstore"
)

// EntityType names articles in the slug registry and the sibling lookup.
const EntityType = "articles"

// Table describes the articles table to pgstore.
var Table = pgstore.Table{
	Name:          "articles",
	SourceColumns: []string{"title", "subtitle"},
}

// ErrNotFound is returned for missing or soft-deleted articles.
var ErrNotFound = errors.New("article not found")

// Article is a stored article.
type Article struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Body      string    `json:"body"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input carries the writable fields.
type Input struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body"`
}

func (in Input) fields() []sluggable.Field {
	return []sluggable.Field{
		{Name: "title", Value: in.Title},
		{Name: "subtitle", Value: in.Subtitle},
	}
}

// Articles stores articles and assigns their slugs.
type Articles struct {
	pool *pgxpool.Pool
	gen  *sluggable.Generator
	cfg  sluggable.Config
}

// New creates the repository. gen must read siblings from a lookup that has
// Table registered as EntityType.
func New(pool *pgxpool.Pool, gen *sluggable.Generator, cfg sluggable.Config) *Articles {
	return &Articles{pool: pool, gen: gen, cfg: cfg}
}

const articleColumns = "id, title, subtitle, body, COALESCE(slug, ''), created_at, updated_at"

// Create inserts an article with a fresh slug.
func (r *Articles) Create(ctx context.Context, in Input) (Article, error) {
	id := uuid.New()
	var a Article

	state := sluggable.State{Changed: true, Fields: in.fields()}
	_, err := r.gen.Assign(ctx, EntityType, id.String(), r.cfg, state, func(ctx context.Context, slug string) error {
		row := r.pool.QueryRow(ctx,
			"INSERT INTO articles (id, title, subtitle, body, slug) VALUES ($1, $2, $3, $4, $5) RETURNING "+articleColumns,
			id, in.Title, in.Subtitle, in.Body, slug)
		return pgstore.MapError(scan(row, &a))
	})
	if err != nil {
		return Article{}, err
	}
	return a, nil
}

// Update changes an article. The slug is re-derived only when the title or
// subtitle changed, or when the article never had one. The transaction commits
// while the slug lock is held, so concurrent writers see the new slug.
func (r *Articles) Update(ctx context.Context, id uuid.UUID, in Input) (Article, error) {
	var a Article

	err := r.gen.Locked(ctx, EntityType, func(ctx context.Context) error {
		return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
			var cur Article
			row := tx.QueryRow(ctx,
				"SELECT "+articleColumns+" FROM articles WHERE id = $1 AND deleted_at IS NULL FOR UPDATE", id)
			if err := scan(row, &cur); err != nil {
				return err
			}

			state := sluggable.State{
				Current: cur.Slug,
				Changed: cur.Title != in.Title || cur.Subtitle != in.Subtitle,
				Fields:  in.fields(),
			}
			_, err := r.gen.Assign(ctx, EntityType, id.String(), r.cfg, state, func(ctx context.Context, slug string) error {
				// Savepoint: a unique violation must not abort the outer transaction.
				return db.WithTx(ctx, tx, func(sp pgx.Tx) error {
					row := sp.QueryRow(ctx,
						"UPDATE articles SET title = $2, subtitle = $3, body = $4, slug = $5, updated_at = now() WHERE id = $1 RETURNING "+articleColumns,
						id, in.Title, in.Subtitle, in.Body, slug)
					return pgstore.MapError(scan(row, &a))
				})
			})
			return err
		})
	})
	if err != nil {
		return Article{}, err
	}
	return a, nil
}

// Delete soft-deletes an article. Its slug stays taken.
func (r *Articles) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE articles SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBySlug returns a live article.
func (r *Articles) GetBySlug(ctx context.Context, slug string) (Article, error) {
	var a Article
	row := r.pool.QueryRow(ctx,
		"SELECT "+articleColumns+" FROM articles WHERE slug = $1 AND deleted_at IS NULL", slug)
	if err := scan(row, &a); err != nil {
		return Article{}, err
	}
	return a, nil
}

func scan(row pgx.Row, a *Article) error {
	err := row.Scan(&a.ID, &a.Title, &a.Subtitle, &a.Body, &a.Slug, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
