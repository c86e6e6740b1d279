package sluggable

import (
	"errors"
	"slices"

	"github.com/dmitrymomot/sluggable/pkg/slug"
)

const (
	// DefaultSlugField is the attribute the slug is written to when SlugField is empty.
	DefaultSlugField = "slug"
	// DefaultFallback is the base used when the source text yields no slug.
	DefaultFallback = "untitled"
)

// DefaultReserved is applied when Config.Reserved is nil. "create" would
// otherwise shadow the conventional /{type}/create route.
var DefaultReserved = []string{"create"}

// Config describes how slugs are derived for one entity type.
// It is read-only while slugs are being computed.
type Config struct {
	// SlugField is the attribute that receives the slug. Default: "slug".
	SlugField string `yaml:"slug_field"`

	// SourceFields are concatenated, space-separated and in order, to build the
	// slug text. Must be non-empty and must not contain SlugField.
	SourceFields []string `yaml:"source_fields"`

	// Reserved values can never be assigned. Nil means DefaultReserved; an
	// explicit empty list means nothing is reserved.
	Reserved []string `yaml:"reserved"`

	// Fallback is sluggified and used as the base when the source values
	// produce an empty slug. Default: "untitled".
	Fallback string `yaml:"fallback"`

	// Separator joins words and the numeric suffix. Default: "-".
	Separator string `yaml:"separator"`

	// StripHTML removes markup from source values before sluggifying.
	StripHTML bool `yaml:"strip_html"`
}

// WithDefaults returns a copy of c with empty fields set to their documented defaults.
func (c Config) WithDefaults() Config {
	if c.SlugField == "" {
		c.SlugField = DefaultSlugField
	}
	if c.Reserved == nil {
		c.Reserved = slices.Clone(DefaultReserved)
	}
	if c.Fallback == "" {
		c.Fallback = DefaultFallback
	}
	if c.Separator == "" {
		c.Separator = slug.DefaultSeparator
	}
	return c
}

// Validate reports configuration mistakes. Every returned error matches ErrConfiguration.
func (c Config) Validate() error {
	c = c.WithDefaults()

	if len(c.SourceFields) == 0 {
		return errors.Join(ErrConfiguration, ErrNoSourceFields)
	}
	if slices.Contains(c.SourceFields, c.SlugField) {
		return errors.Join(ErrConfiguration, ErrSelfReferentialSource)
	}
	if c.Sluggify(c.Fallback) == "" {
		return errors.Join(ErrConfiguration, ErrEmptyFallback)
	}
	return nil
}

// Sluggify applies the canonical slug transform for this configuration.
// Reserved values, stored slugs and derived candidates all go through it.
func (c Config) Sluggify(s string) string {
	sep := c.Separator
	if sep == "" {
		sep = slug.DefaultSeparator
	}
	return slug.Make(s, slug.Separator(sep))
}
