package mcp

import (
	"context"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	hits   []domain.RetrievedChunk
	answer *domain.Answer
	err    error

	lastQuery string
	lastOpts  domain.QueryOptions
}

func (m *mockQueryService) Retrieve(
	_ context.Context,
	question string,
	opts domain.QueryOptions,
) ([]domain.RetrievedChunk, error) {
	m.lastQuery, m.lastOpts = question, opts
	return m.hits, m.err
}

func (m *mockQueryService) Ask(
	_ context.Context,
	question string,
	opts domain.QueryOptions,
) (*domain.Answer, error) {
	m.lastQuery, m.lastOpts = question, opts
	return m.answer, m.err
}

// mockInspectService is a mock implementation of driving.InspectService.
type mockInspectService struct {
	stats *domain.IndexStats
	err   error
}

func (m *mockInspectService) Inspect(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}
