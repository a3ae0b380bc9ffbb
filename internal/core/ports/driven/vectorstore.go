package driven

import (
	"context"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// VectorStore persists embedded chunks in a named collection.
// Entries are keyed by the chunk's content hash.
type VectorStore interface {
	// Upsert inserts or replaces chunks. Each chunk must carry an embedding.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Delete removes entries by id. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// Query returns the k entries most similar to vec, best first.
	// A non-nil filter restricts results to entries whose metadata matches every key.
	Query(ctx context.Context, vec []float32, k int, filter domain.Metadata) ([]domain.RetrievedChunk, error)

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)

	// All returns every stored chunk without embeddings.
	All(ctx context.Context) ([]domain.Chunk, error)

	// Close releases resources.
	Close() error
}

// RunStore records indexing runs.
type RunStore interface {
	// SaveRun stores or replaces a run report.
	SaveRun(ctx context.Context, report domain.IndexReport) error

	// LastRun returns the most recent run, or domain.ErrNotFound.
	LastRun(ctx context.Context) (*domain.IndexReport, error)
}
