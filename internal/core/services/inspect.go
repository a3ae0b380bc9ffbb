package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// Ensure InspectService implements the interface.
var _ driving.InspectService = (*InspectService)(nil)

// HistogramBounds are the lower bounds of the chunk length buckets.
var HistogramBounds = []int{0, 500, 1000, 1500, 2000, 3000, 5000}

// InspectService computes statistics over the stored index.
type InspectService struct {
	vectors driven.VectorStore
	docs    driven.DocStore
	runs    driven.RunStore
}

// NewInspectService creates an inspect service. runs is optional.
func NewInspectService(vectors driven.VectorStore, docs driven.DocStore, runs driven.RunStore) *InspectService {
	return &InspectService{vectors: vectors, docs: docs, runs: runs}
}

// Inspect loads the docstore and summarises it.
func (s *InspectService) Inspect(ctx context.Context) (*domain.IndexStats, error) {
	if err := s.docs.Load(); err != nil {
		return nil, fmt.Errorf("load docstore: %w", err)
	}
	count, err := s.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vectors: %w", err)
	}
	if count == 0 && s.docs.Len() == 0 {
		return nil, domain.ErrEmptyIndex
	}

	stats := Summarise(s.docs.All())
	stats.VectorCount = count
	stats.Mismatch = count == 0 && stats.DocCount > 0
	if stats.Mismatch {
		logger.Warn("Vector store is empty but docstore has %d entries; the next index run rebuilds", stats.DocCount)
	}

	if s.runs != nil {
		last, err := s.runs.LastRun(ctx)
		switch {
		case err == nil:
			stats.LastRun = last
		case !errors.Is(err, domain.ErrNotFound):
			logger.Warn("Failed to read last run: %v", err)
		}
	}
	return stats, nil
}

// Summarise computes document statistics for entries.
func Summarise(entries []domain.StoredChunk) *domain.IndexStats {
	stats := &domain.IndexStats{
		DocCount:         len(entries),
		RepositoryCounts: make(map[string]int),
		DepthCounts:      make(map[int]int),
		Histogram:        make([]domain.LengthBucket, len(HistogramBounds)),
	}
	for i, lower := range HistogramBounds {
		stats.Histogram[i].Lower = lower
		if i+1 < len(HistogramBounds) {
			stats.Histogram[i].Upper = HistogramBounds[i+1]
		}
	}
	if len(entries) == 0 {
		return stats
	}

	files := make(map[string]bool)
	types := make(map[string]bool)
	keys := make(map[string]bool)
	total := 0

	for i, e := range entries {
		md := e.Metadata
		length := utf8.RuneCountInString(e.Text)
		total += length

		if file := SourcePath(md); file != "" {
			files[file] = true
		}
		if ft := md.String(domain.KeyFileType); ft != "" {
			types[ft] = true
		}
		for k := range md {
			keys[k] = true
		}
		if repo := md.String(domain.KeyRepository); repo != "" {
			stats.RepositoryCounts[repo]++
		}
		if depth, ok := md.Int(domain.KeyDepth); ok {
			stats.DepthCounts[depth]++
		}
		if md.Bool(domain.KeyIsCode) {
			stats.CodeChunks++
		}
		if md.Bool(domain.KeyIsDocumentation) {
			stats.DocChunks++
		}

		stats.Histogram[bucket(length)].Count++

		if i == 0 || length < stats.MinLength {
			stats.MinLength = length
			stats.Smallest = summary(e, length, 200)
		}
		if i == 0 || length > stats.MaxLength {
			stats.MaxLength = length
			stats.Largest = summary(e, length, 200)
		}
		if length < domain.SuspiciousLength {
			stats.Suspicious = append(stats.Suspicious, summary(e, length, 100))
		}
	}

	stats.MeanLength = float64(total) / float64(len(entries))
	stats.UniqueFiles = len(files)
	stats.Repositories = sortedKeys(stats.RepositoryCounts)
	stats.FileTypes = sortedSet(types)
	stats.MetadataKeys = sortedSet(keys)
	return stats
}

func bucket(length int) int {
	for i := len(HistogramBounds) - 1; i > 0; i-- {
		if length >= HistogramBounds[i] {
			return i
		}
	}
	return 0
}

func summary(e domain.StoredChunk, length, preview int) domain.ChunkSummary {
	return domain.ChunkSummary{
		ID:      e.ID,
		File:    SourcePath(e.Metadata),
		Length:  length,
		Preview: domain.Preview(e.Text, preview),
	}
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
