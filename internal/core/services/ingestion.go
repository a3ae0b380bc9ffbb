package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// DefaultBatchSize is the number of chunks per embedding request.
const DefaultBatchSize = 16

// IngestResult counts what one ingestion pass changed.
type IngestResult struct {
	Embedded  int
	Unchanged int
	Deleted   int
	Failed    int
}

// IngestionService writes chunks into the vector store incrementally.
// Chunks are identified by content hash; only new or changed chunks are
// embedded and ids that no longer appear are deleted.
type IngestionService struct {
	embedder  driven.EmbeddingService
	vectors   driven.VectorStore
	docs      driven.DocStore
	processor driven.ChunkProcessor
	batchSize int
	workers   int
	now       func() time.Time
}

// NewIngestionService creates an ingestion service.
// processor is optional and runs over new chunks before embedding.
func NewIngestionService(
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	docs driven.DocStore,
	processor driven.ChunkProcessor,
	batchSize, workers int,
) *IngestionService {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	if workers < 1 {
		workers = 1
	}
	return &IngestionService{
		embedder:  embedder,
		vectors:   vectors,
		docs:      docs,
		processor: processor,
		batchSize: batchSize,
		workers:   workers,
		now:       time.Now,
	}
}

// ChunkID returns the content hash of a chunk: its file identity and text.
func ChunkID(c domain.Chunk) string {
	h := sha256.New()
	h.Write([]byte(fileIdentity(c.Metadata)))
	h.Write([]byte{0})
	h.Write([]byte(c.Text))
	return hex.EncodeToString(h.Sum(nil))
}

// fileIdentity names the file a chunk came from. Relative paths inside a
// repository are qualified with the repository path, so identical files in
// sibling repositories stay distinct.
func fileIdentity(md domain.Metadata) string {
	rel := md.String(domain.KeyRelativePath)
	if rel == "" {
		return md.String(domain.KeyFilePath)
	}
	if repo := md.String(domain.KeyRepositoryPath); repo != "" && md.Bool(domain.KeyInRepository) {
		return path.Join(filepath.ToSlash(repo), rel)
	}
	return rel
}

// AssignIDs sets every chunk's ID and drops later duplicates.
func AssignIDs(chunks []domain.Chunk) []domain.Chunk {
	seen := make(map[string]bool, len(chunks))
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		c.ID = ChunkID(c)
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// Ingest reconciles the stores with chunks.
func (s *IngestionService) Ingest(ctx context.Context, chunks []domain.Chunk) (*IngestResult, error) {
	logger.Section("Ingestion")

	if err := s.docs.Load(); err != nil {
		return nil, fmt.Errorf("load docstore: %w", err)
	}
	count, err := s.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vectors: %w", err)
	}
	if count == 0 && s.docs.Len() > 0 {
		logger.Warn("Vector store is empty but docstore has %d entries; clearing docstore for a full rebuild", s.docs.Len())
		s.docs.Clear()
	}

	chunks = AssignIDs(chunks)
	current := make(map[string]bool, len(chunks))
	var fresh []domain.Chunk
	result := &IngestResult{}
	for _, c := range chunks {
		current[c.ID] = true
		if _, ok := s.docs.Get(c.ID); ok {
			result.Unchanged++
			continue
		}
		fresh = append(fresh, c)
	}
	var stale []string
	for _, id := range s.docs.IDs() {
		if !current[id] {
			stale = append(stale, id)
		}
	}
	logger.Info("%d chunks: %d new or changed, %d unchanged, %d stale", len(chunks), len(fresh), result.Unchanged, len(stale))

	if len(fresh) == 0 && len(chunks) > 0 {
		logger.Warn("No new chunks to embed: all chunks already exist in the docstore")
	}

	if len(fresh) > 0 && s.processor != nil {
		logger.Debug("Running %s over %d chunks", s.processor.Name(), len(fresh))
		fresh, err = s.processor.Process(ctx, fresh)
		if err != nil {
			return nil, fmt.Errorf("enrich chunks: %w", err)
		}
	}

	embedded, failed := s.embed(ctx, fresh)
	result.Embedded = embedded
	result.Failed = failed

	if err := ctx.Err(); err != nil {
		if saveErr := s.docs.Save(); saveErr != nil {
			logger.Warn("Failed to save docstore: %v", saveErr)
		}
		return result, err
	}

	if len(stale) > 0 {
		if err := s.vectors.Delete(ctx, stale); err != nil {
			return result, fmt.Errorf("delete stale vectors: %w", err)
		}
		for _, id := range stale {
			s.docs.Delete(id)
		}
		result.Deleted = len(stale)
	}

	if err := s.docs.Save(); err != nil {
		return result, fmt.Errorf("save docstore: %w", err)
	}
	return result, nil
}

// embed writes chunks in batches, up to s.workers batches at a time.
// It returns the number of chunks written and the number skipped.
func (s *IngestionService) embed(ctx context.Context, chunks []domain.Chunk) (int, int) {
	if len(chunks) == 0 {
		return 0, 0
	}

	executor := NewTwoTier(s.upsertBatch, s.upsertOne)

	var (
		mu       sync.Mutex
		embedded int
		failed   int
	)
	var g errgroup.Group
	g.SetLimit(s.workers)
	for start := 0; start < len(chunks); start += s.batchSize {
		batch := chunks[start:min(start+s.batchSize, len(chunks))]
		g.Go(func() error {
			ok, bad := executor.Run(ctx, batch)

			mu.Lock()
			defer mu.Unlock()
			indexedAt := s.now().UTC()
			for _, c := range ok {
				s.docs.Put(domain.StoredChunk{ID: c.ID, Text: c.Text, Metadata: c.Metadata, IndexedAt: indexedAt})
			}
			for _, f := range bad {
				logFailure(f)
			}
			embedded += len(ok)
			failed += len(bad)
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("Embedded %d chunks, %d failed", embedded, failed)
	return embedded, failed
}

func (s *IngestionService) upsertBatch(ctx context.Context, batch []domain.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}
	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vecs) != len(batch) {
		return fmt.Errorf("embed batch: got %d vectors for %d chunks", len(vecs), len(batch))
	}
	withVecs := make([]domain.Chunk, len(batch))
	for i, c := range batch {
		c.Embedding = vecs[i]
		withVecs[i] = c
	}
	if err := s.vectors.Upsert(ctx, withVecs); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	logger.Debug("Upserted batch of %d chunks", len(batch))
	return nil
}

func (s *IngestionService) upsertOne(ctx context.Context, c domain.Chunk) error {
	vec, err := s.embedder.Embed(ctx, c.Text)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	c.Embedding = vec
	if err := s.vectors.Upsert(ctx, []domain.Chunk{c}); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

func logFailure(f ItemFailure[domain.Chunk]) {
	md := f.Item.Metadata
	logger.Error("Skipping chunk from %s (%s), length %d: %v\n  preview: %q",
		md.String(domain.KeyFileName),
		md.String(domain.KeyRelativePath),
		len([]rune(f.Item.Text)),
		f.Err,
		domain.Preview(f.Item.Text, 200))
}
