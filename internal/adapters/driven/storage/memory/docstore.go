package memory

import (
	"sort"
	"sync"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure DocStore implements the interface.
var _ driven.DocStore = (*DocStore)(nil)

// DocStore is an in-memory implementation of driven.DocStore.
// Load and Save are no-ops; file-backed stores embed it and add persistence.
type DocStore struct {
	mu      sync.RWMutex
	entries map[string]domain.StoredChunk
}

// NewDocStore creates an empty document store.
func NewDocStore() *DocStore {
	return &DocStore{entries: make(map[string]domain.StoredChunk)}
}

// Load is a no-op.
func (s *DocStore) Load() error { return nil }

// Save is a no-op.
func (s *DocStore) Save() error { return nil }

// Path returns ":memory:".
func (s *DocStore) Path() string { return ":memory:" }

// Get returns the entry for id.
func (s *DocStore) Get(id string) (domain.StoredChunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Put stores or replaces an entry.
func (s *DocStore) Put(entry domain.StoredChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
}

// Delete removes an entry.
func (s *DocStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// IDs returns every id in sorted order.
func (s *DocStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns every entry ordered by id.
func (s *DocStore) All() []domain.StoredChunk {
	ids := s.IDs()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StoredChunk, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (s *DocStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes every entry.
func (s *DocStore) Clear() {
	s.Replace(nil)
}

// Replace swaps the contents for entries.
func (s *DocStore) Replace(entries []domain.StoredChunk) {
	m := make(map[string]domain.StoredChunk, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = m
}
