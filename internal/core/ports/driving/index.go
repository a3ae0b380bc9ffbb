package driving

import (
	"context"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// IndexRequest configures one indexing run.
type IndexRequest struct {
	// DryRun produces chunks without embedding or storing them.
	DryRun bool
}

// IndexService builds and refreshes the vector index.
type IndexService interface {
	// Run indexes every eligible file once.
	Run(ctx context.Context, req IndexRequest) (*domain.IndexReport, error)

	// Watch runs once, then again after every batch of file changes,
	// until ctx is cancelled. Each report is passed to onRun.
	Watch(ctx context.Context, req IndexRequest, onRun func(*domain.IndexReport, error)) error
}
