package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
)

type indexFixture struct {
	files    *mockFileSource
	embedder *mockEmbedder
	runs     *memory.RunStore
	svc      *IndexService
}

func newIndexFixture(t *testing.T) *indexFixture {
	files := newMockFileSource(t)
	files.add("notes.txt", paragraph("notes", 400))
	files.add("setup.py", "from setuptools import setup\n\nsetup(name='demo')\n")

	f := &indexFixture{
		files:    files,
		embedder: &mockEmbedder{},
		runs:     memory.NewRunStore(),
	}
	ingestion := NewIngestionService(f.embedder, memory.NewVectorStore(), memory.NewDocStore(), nil, 16, 2)
	f.svc = NewIndexService(newTestProducer(files), ingestion, f.runs)
	return f
}

func TestIndexService_Run(t *testing.T) {
	f := newIndexFixture(t)

	report, err := f.svc.Run(context.Background(), driving.IndexRequest{})

	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.FilesSeen)
	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 2, report.Embedded)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	last, err := f.runs.LastRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.RunID, last.RunID)
}

func TestIndexService_RunTwiceIsIncremental(t *testing.T) {
	f := newIndexFixture(t)
	ctx := context.Background()

	_, err := f.svc.Run(ctx, driving.IndexRequest{})
	require.NoError(t, err)
	report, err := f.svc.Run(ctx, driving.IndexRequest{})

	require.NoError(t, err)
	assert.Zero(t, report.Embedded)
	assert.Equal(t, 2, report.Unchanged)
	assert.Equal(t, 2, f.embedder.count())
}

func TestIndexService_DryRun(t *testing.T) {
	f := newIndexFixture(t)

	report, err := f.svc.Run(context.Background(), driving.IndexRequest{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Chunks)
	assert.Zero(t, report.Embedded)
	assert.Zero(t, f.embedder.count())
	_, err = f.runs.LastRun(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexService_NoIngestion(t *testing.T) {
	files := newMockFileSource(t)
	files.add("a.txt", "text")
	svc := NewIndexService(newTestProducer(files), nil, nil)

	_, err := svc.Run(context.Background(), driving.IndexRequest{})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexService_Watch(t *testing.T) {
	f := newIndexFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.files.watch <- struct{}{}

	var reports []*domain.IndexReport
	err := f.svc.Watch(ctx, driving.IndexRequest{}, func(r *domain.IndexReport, err error) {
		require.NoError(t, err)
		reports = append(reports, r)
		if len(reports) == 2 {
			cancel()
		}
	})

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 2, reports[0].Embedded)
	assert.Equal(t, 2, reports[1].Unchanged)
	assert.NotEqual(t, reports[0].RunID, reports[1].RunID)
}

func TestIndexService_WatchStopsWhenChannelCloses(t *testing.T) {
	f := newIndexFixture(t)
	close(f.files.watch)

	runs := 0
	err := f.svc.Watch(context.Background(), driving.IndexRequest{DryRun: true}, func(*domain.IndexReport, error) {
		runs++
	})

	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}
