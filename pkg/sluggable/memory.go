package sluggable

import (
	"context"
	"sync"
)

type memoryRecord struct {
	slug    string
	deleted bool
}

// MemoryStore keeps slugs in memory, grouped by entity type. Soft-deleted
// records keep their slug and still count as siblings. It enforces slug
// uniqueness on Put, standing in for a storage-level unique index.
type MemoryStore struct {
	records map[string]map[string]*memoryRecord
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]map[string]*memoryRecord)}
}

// Fetch implements SiblingLookup.
func (m *MemoryStore) Fetch(_ context.Context, entityType, excludeID string) (SiblingSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := NewSiblingSet()
	for id, rec := range m.records[entityType] {
		if id == excludeID || rec.slug == "" {
			continue
		}
		set.Add(rec.slug)
	}
	return set, nil
}

// Put stores slug for the record, creating it if needed. It returns
// ErrSlugConflict when another record of the type, deleted or not, holds slug.
func (m *MemoryStore) Put(_ context.Context, entityType, id, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID, ok := m.records[entityType]
	if !ok {
		byID = make(map[string]*memoryRecord)
		m.records[entityType] = byID
	}

	for otherID, rec := range byID {
		if otherID != id && rec.slug == slug && slug != "" {
			return ErrSlugConflict
		}
	}

	if rec, ok := byID[id]; ok {
		rec.slug = slug
		return nil
	}
	byID[id] = &memoryRecord{slug: slug}
	return nil
}

// SoftDelete marks the record deleted. Its slug stays reserved.
func (m *MemoryStore) SoftDelete(_ context.Context, entityType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[entityType][id]
	if !ok {
		return ErrRecordNotFound
	}
	rec.deleted = true
	return nil
}

// Get returns the slug of a live record.
func (m *MemoryStore) Get(entityType, id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[entityType][id]
	if !ok || rec.deleted {
		return "", false
	}
	return rec.slug, true
}

var _ SiblingLookup = (*MemoryStore)(nil)
