package sluggable

import (
	"maps"
	"slices"
)

// Field is a named attribute value of the entity being slugged.
type Field struct {
	Name  string
	Value string
}

// State is the slug-relevant snapshot of one entity at create or update time.
type State struct {
	// Current is the slug already stored on the entity, empty if never set.
	Current string
	// Changed is true when any source field differs from the persisted record.
	// Creation counts as changed.
	Changed bool
	// Fields carries the entity's attributes. Only those named in
	// Config.SourceFields are read; a missing one counts as empty.
	Fields []Field
}

// Value returns the value of the named field, or "" when absent.
func (s State) Value(name string) string {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// SiblingSet holds the slugs of every other record of the same entity type,
// soft-deleted ones included.
type SiblingSet map[string]struct{}

// NewSiblingSet builds a set from slugs.
func NewSiblingSet(slugs ...string) SiblingSet {
	s := make(SiblingSet, len(slugs))
	for _, v := range slugs {
		s[v] = struct{}{}
	}
	return s
}

// Contains reports whether slug is taken. A nil set contains nothing.
func (s SiblingSet) Contains(slug string) bool {
	_, ok := s[slug]
	return ok
}

// Add marks slug as taken.
func (s SiblingSet) Add(slug string) {
	s[slug] = struct{}{}
}

// Len returns the number of slugs in the set.
func (s SiblingSet) Len() int {
	return len(s)
}

// Slugs returns the members in sorted order.
func (s SiblingSet) Slugs() []string {
	return slices.Sorted(maps.Keys(s))
}
