package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.IndexReport
}

// NewRunStore creates an empty run store.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]domain.IndexReport)}
}

// SaveRun stores or replaces a run.
func (s *RunStore) SaveRun(_ context.Context, report domain.IndexReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[report.RunID] = report
	return nil
}

// LastRun returns the run with the latest start time.
func (s *RunStore) LastRun(_ context.Context) (*domain.IndexReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return nil, domain.ErrNotFound
	}
	runs := make([]domain.IndexReport, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	last := runs[0]
	return &last, nil
}
