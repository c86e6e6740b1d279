package sluggable

import (
	"strconv"
	"strings"

	"github.com/dmitrymomot/sluggable/pkg/sanitizer"
)

// Compute returns the slug to store for an entity.
//
// The configuration is validated first; a broken one fails with an error
// matching ErrConfiguration before siblings are looked at. An entity that
// already has a slug and whose source fields did not change keeps its slug
// untouched. Otherwise the source values are joined with single spaces and
// sluggified; while the result is reserved or held by a sibling, the suffix
// "-1", "-2", … is appended to the original candidate and the smallest free
// value wins.
func Compute(cfg Config, state State, siblings SiblingSet) (string, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if skip(state) {
		return state.Current, nil
	}
	s, _ := derive(cfg, state, siblings)
	return s, nil
}

func skip(state State) bool {
	return state.Current != "" && !state.Changed
}

// baseSlug sluggifies the positional concatenation of the source values.
// cfg must already carry defaults.
func baseSlug(cfg Config, state State) string {
	values := make([]string, len(cfg.SourceFields))
	for i, name := range cfg.SourceFields {
		v := state.Value(name)
		if cfg.StripHTML {
			v = sanitizer.StripHTML(v)
		}
		values[i] = v
	}

	if s := cfg.Sluggify(strings.Join(values, " ")); s != "" {
		return s
	}
	return cfg.Sluggify(cfg.Fallback)
}

// derive returns the first free candidate and the suffix that produced it
// (0 when the base itself was free). cfg must already carry defaults.
func derive(cfg Config, state State, siblings SiblingSet) (string, int) {
	reserved := make(map[string]struct{}, len(cfg.Reserved))
	for _, r := range cfg.Reserved {
		reserved[cfg.Sluggify(r)] = struct{}{}
	}
	taken := func(s string) bool {
		_, ok := reserved[s]
		return ok || siblings.Contains(s)
	}

	original := baseSlug(cfg, state)
	candidate := original
	k := 0
	for taken(candidate) {
		k++
		candidate = original + cfg.Separator + strconv.Itoa(k)
	}
	return candidate, k
}
