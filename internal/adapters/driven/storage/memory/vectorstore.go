package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/storage/rank"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory vector store with exact cosine search.
type VectorStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
}

// NewVectorStore creates an empty vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{chunks: make(map[string]domain.Chunk)}
}

// Upsert inserts or replaces chunks.
func (s *VectorStore) Upsert(_ context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		c.Metadata = c.Metadata.Clone()
		c.Embedding = append([]float32(nil), c.Embedding...)
		s.chunks[c.ID] = c
	}
	return nil
}

// Delete removes entries by id.
func (s *VectorStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.chunks, id)
	}
	return nil
}

// Query returns the k nearest entries by cosine similarity.
func (s *VectorStore) Query(_ context.Context, vec []float32, k int, filter domain.Metadata) ([]domain.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hits := make([]domain.RetrievedChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		if !rank.Matches(c.Metadata, filter) {
			continue
		}
		score := rank.Cosine(vec, c.Embedding)
		c.Embedding = nil
		hits = append(hits, domain.RetrievedChunk{Chunk: c, Score: score})
	}
	return rank.TopK(hits, k), nil
}

// Count returns the number of stored vectors.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// All returns every chunk without embeddings, ordered by id.
func (s *VectorStore) All(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		c.Embedding = nil
		out = append(out, c)
	}
	sortChunks(out)
	return out, nil
}

// Close is a no-op.
func (s *VectorStore) Close() error { return nil }

func sortChunks(chunks []domain.Chunk) {
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ID < chunks[j].ID })
}
