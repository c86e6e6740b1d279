package sluggable_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sluggable/pkg/sluggable"
)

func TestParseConfigs(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		reg, err := sluggable.ParseConfigs([]byte(`
articles:
  source_fields: [title, subtitle]
tags:
  slug_field: handle
  source_fields: [name]
  reserved: []
  fallback: tag
  separator: _
  strip_html: true
`))
		require.NoError(t, err)
		require.Len(t, reg, 2)

		articles, err := reg.Get("articles")
		require.NoError(t, err)
		assert.Equal(t, "slug", articles.SlugField)
		assert.Equal(t, []string{"title", "subtitle"}, articles.SourceFields)
		assert.Equal(t, sluggable.DefaultReserved, articles.Reserved)
		assert.Equal(t, "untitled", articles.Fallback)
		assert.Equal(t, "-", articles.Separator)
		assert.False(t, articles.StripHTML)

		tags, err := reg.Get("tags")
		require.NoError(t, err)
		assert.Equal(t, "handle", tags.SlugField)
		assert.Empty(t, tags.Reserved)
		assert.NotNil(t, tags.Reserved)
		assert.Equal(t, "tag", tags.Fallback)
		assert.Equal(t, "_", tags.Separator)
		assert.True(t, tags.StripHTML)
	})

	t.Run("invalid entry names the entity type", func(t *testing.T) {
		t.Parallel()

		_, err := sluggable.ParseConfigs([]byte(`
pages:
  source_fields: [title, slug]
`))
		require.ErrorIs(t, err, sluggable.ErrConfiguration)
		require.ErrorIs(t, err, sluggable.ErrSelfReferentialSource)
		assert.Contains(t, err.Error(), `"pages"`)
	})

	t.Run("missing source fields", func(t *testing.T) {
		t.Parallel()

		_, err := sluggable.ParseConfigs([]byte("pages:\n  reserved: [create]\n"))
		require.ErrorIs(t, err, sluggable.ErrNoSourceFields)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := sluggable.ParseConfigs([]byte("pages: [unclosed"))
		require.ErrorIs(t, err, sluggable.ErrInvalidConfigFile)
	})

	t.Run("unknown entity type", func(t *testing.T) {
		t.Parallel()

		reg, err := sluggable.ParseConfigs([]byte("{}"))
		require.NoError(t, err)

		_, err = reg.Get("missing")
		require.ErrorIs(t, err, sluggable.ErrUnknownEntityType)
	})
}

func TestLoadConfigs(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"slugs.yaml": &fstest.MapFile{Data: []byte("articles:\n  source_fields: [title]\n")},
	}

	reg, err := sluggable.LoadConfigs(fsys, "slugs.yaml")
	require.NoError(t, err)
	assert.Contains(t, reg, "articles")

	_, err = sluggable.LoadConfigs(fsys, "missing.yaml")
	require.ErrorIs(t, err, sluggable.ErrInvalidConfigFile)
}
