package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

func chunk(rel, text string) domain.Chunk {
	return domain.Chunk{
		Text: text,
		Metadata: domain.Metadata{
			domain.KeyRelativePath: rel,
			domain.KeyFileName:     rel,
		},
	}
}

type ingestFixture struct {
	embedder *mockEmbedder
	vectors  *memory.VectorStore
	docs     *memory.DocStore
	svc      *IngestionService
}

func newIngestFixture() *ingestFixture {
	f := &ingestFixture{
		embedder: &mockEmbedder{},
		vectors:  memory.NewVectorStore(),
		docs:     memory.NewDocStore(),
	}
	f.svc = NewIngestionService(f.embedder, f.vectors, f.docs, nil, 2, 2)
	return f
}

func (f *ingestFixture) vectorCount(t *testing.T) int {
	t.Helper()
	n, err := f.vectors.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestChunkID(t *testing.T) {
	a := ChunkID(chunk("a.md", "same text"))
	b := ChunkID(chunk("b.md", "same text"))
	a2 := ChunkID(chunk("a.md", "same text"))

	assert.Len(t, a, 64)
	assert.Equal(t, a, a2)
	assert.NotEqual(t, a, b)

	withoutRel := domain.Chunk{Text: "same text", Metadata: domain.Metadata{domain.KeyFilePath: "a.md"}}
	assert.Equal(t, a, ChunkID(withoutRel))
}

func repoChunk(repo, rel, text string) domain.Chunk {
	c := chunk(rel, text)
	c.Metadata[domain.KeyInRepository] = true
	c.Metadata[domain.KeyRepository] = filepath.Base(repo)
	c.Metadata[domain.KeyRepositoryPath] = repo
	c.Metadata[domain.KeyFilePath] = filepath.Join(repo, rel)
	return c
}

func TestChunkID_QualifiedByRepository(t *testing.T) {
	a := ChunkID(repoChunk("/data/repoA", "README.md", "same text"))
	b := ChunkID(repoChunk("/data/repoB", "README.md", "same text"))

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, ChunkID(chunk("README.md", "same text")), a)
}

func TestAssignIDs_KeepsIdenticalFilesInSiblingRepositories(t *testing.T) {
	got := AssignIDs([]domain.Chunk{
		repoChunk("/data/repoA", "README.md", "# Project\n\nsame readme"),
		repoChunk("/data/repoB", "README.md", "# Project\n\nsame readme"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "repoA", got[0].Metadata.String(domain.KeyRepository))
	assert.Equal(t, "repoB", got[1].Metadata.String(domain.KeyRepository))
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestAssignIDs_Dedupes(t *testing.T) {
	got := AssignIDs([]domain.Chunk{chunk("a.md", "one"), chunk("a.md", "two"), chunk("a.md", "one")})

	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Text)
	assert.Equal(t, "two", got[1].Text)
	assert.NotEmpty(t, got[0].ID)
}

func TestIngest_UpsertAndDeleteAcrossRuns(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()

	first := []domain.Chunk{chunk("a.md", "alpha"), chunk("a.md", "bravo"), chunk("b.md", "charlie")}
	res, err := f.svc.Ingest(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, IngestResult{Embedded: 3}, *res)
	assert.Equal(t, 3, f.vectorCount(t))
	assert.Equal(t, 3, f.docs.Len())

	res, err = f.svc.Ingest(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, IngestResult{Unchanged: 3}, *res)
	assert.Equal(t, 3, f.embedder.count(), "unchanged chunks are not embedded again")

	second := []domain.Chunk{chunk("a.md", "alpha"), chunk("a.md", "bravo edited")}
	res, err = f.svc.Ingest(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, IngestResult{Embedded: 1, Unchanged: 1, Deleted: 2}, *res)
	assert.Equal(t, 2, f.vectorCount(t))

	want := AssignIDs(second)
	assert.ElementsMatch(t, []string{want[0].ID, want[1].ID}, f.docs.IDs())
}

func TestIngest_FallsBackToSingleItems(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()

	chunks := []domain.Chunk{chunk("a.md", "good one"), chunk("a.md", "FAIL here"), chunk("a.md", "good two")}
	res, err := f.svc.Ingest(ctx, chunks)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Embedded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, f.vectorCount(t))
	assert.Equal(t, 2, f.docs.Len())
	assert.Positive(t, f.embedder.singleCalls)

	// The failed chunk is not recorded, so the next run retries it.
	res, err = f.svc.Ingest(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Unchanged)
	assert.Equal(t, 1, res.Failed)
}

func TestIngest_MismatchClearsDocstore(t *testing.T) {
	f := newIngestFixture()
	f.docs.Put(domain.StoredChunk{ID: "orphan", Text: "left over"})

	res, err := f.svc.Ingest(context.Background(), []domain.Chunk{chunk("a.md", "alpha")})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Embedded)
	assert.Zero(t, res.Deleted)
	_, ok := f.docs.Get("orphan")
	assert.False(t, ok)
	assert.Equal(t, 1, f.docs.Len())
}

func TestIngest_ProcessorSeesOnlyNewChunks(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	proc := &tagProcessor{}
	f.svc = NewIngestionService(f.embedder, f.vectors, f.docs, proc, 2, 2)

	chunks := []domain.Chunk{chunk("a.md", "alpha"), chunk("a.md", "bravo")}
	_, err := f.svc.Ingest(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, proc.seen)

	_, err = f.svc.Ingest(ctx, append(chunks, chunk("a.md", "charlie")))
	require.NoError(t, err)
	assert.Equal(t, 3, proc.seen)

	for _, e := range f.docs.All() {
		assert.True(t, e.Metadata.Bool("tagged"))
	}
}

func TestIngest_ProcessorError(t *testing.T) {
	f := newIngestFixture()
	f.svc = NewIngestionService(f.embedder, f.vectors, f.docs, &tagProcessor{err: errors.New("boom")}, 2, 2)

	_, err := f.svc.Ingest(context.Background(), []domain.Chunk{chunk("a.md", "alpha")})

	assert.ErrorContains(t, err, "enrich chunks")
	assert.Zero(t, f.vectorCount(t))
}

func TestIngest_AllFail(t *testing.T) {
	f := newIngestFixture()
	f.embedder.failAll = true

	res, err := f.svc.Ingest(context.Background(), []domain.Chunk{chunk("a.md", "alpha"), chunk("a.md", "bravo")})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	assert.Zero(t, res.Embedded)
	assert.Zero(t, f.docs.Len())
}

func TestIngest_Empty(t *testing.T) {
	f := newIngestFixture()

	res, err := f.svc.Ingest(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, IngestResult{}, *res)
}

func TestNewIngestionService_Defaults(t *testing.T) {
	svc := NewIngestionService(nil, nil, nil, nil, 0, 0)

	assert.Equal(t, DefaultBatchSize, svc.batchSize)
	assert.Equal(t, 1, svc.workers)
}
