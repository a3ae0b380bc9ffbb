package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/fragmenter/internal/classifier"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/logger"
	"github.com/custodia-labs/fragmenter/internal/metadata"
	"github.com/custodia-labs/fragmenter/internal/postprocessors/merge"
	"github.com/custodia-labs/fragmenter/internal/splitters"
)

// Production is the output of one chunk production pass.
type Production struct {
	// Chunks are the merged chunks in file enumeration order.
	Chunks []domain.Chunk

	// Files is the number of eligible files found.
	Files int

	// Skipped counts files that could not be read or decoded.
	Skipped int
}

// Producer turns the files of a FileSource into merged, enriched chunks.
type Producer struct {
	files      driven.FileSource
	classifier *classifier.Classifier
	selector   *splitters.Selector
	enricher   *metadata.Enricher
	workers    int
}

// NewProducer creates a chunk producer.
// workers bounds concurrent file processing; values below 1 mean 1.
func NewProducer(
	files driven.FileSource,
	cls *classifier.Classifier,
	selector *splitters.Selector,
	enricher *metadata.Enricher,
	workers int,
) *Producer {
	if workers < 1 {
		workers = 1
	}
	return &Producer{
		files:      files,
		classifier: cls,
		selector:   selector,
		enricher:   enricher,
		workers:    workers,
	}
}

// Source returns the file source the producer reads from.
func (p *Producer) Source() driven.FileSource {
	return p.files
}

// Produce enumerates eligible files and produces their chunks.
// Files are processed concurrently; the result keeps enumeration order
// and the chunk order within each file.
func (p *Producer) Produce(ctx context.Context) (*Production, error) {
	paths, err := p.files.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	logger.Info("Found %d eligible files under %s", len(paths), p.files.Root())

	results := make([][]domain.Chunk, len(paths))
	skipped := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunks, err := p.ProduceFile(path)
			if err != nil {
				if errors.Is(err, domain.ErrUndecodable) {
					logger.Warn("Skipping undecodable file %s: %v", path, err)
				} else {
					logger.Warn("Skipping file %s: %v", path, err)
				}
				skipped[i] = true
				return nil
			}
			results[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prod := &Production{Files: len(paths)}
	for i, chunks := range results {
		if skipped[i] {
			prod.Skipped++
			continue
		}
		for _, c := range chunks {
			if c.IsBlank() {
				continue
			}
			prod.Chunks = append(prod.Chunks, c)
		}
	}
	logger.Info("Produced %d chunks from %d files (%d skipped)", len(prod.Chunks), prod.Files, prod.Skipped)
	return prod, nil
}

// ProduceFile runs one file through classification, splitting, metadata
// enrichment and merging.
func (p *Producer) ProduceFile(path string) ([]domain.Chunk, error) {
	content, err := p.files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cls := p.classifier.Classify(path)
	file := &domain.SourceFile{
		Path:           path,
		Name:           filepath.Base(path),
		Extension:      classifier.Extension(path),
		Classification: cls,
		Content:        content,
	}
	base := p.enricher.Enrich(path, cls)

	res, err := p.selector.Split(file, base)
	if err != nil {
		return nil, err
	}
	chunks := merge.Merge(res.Chunks, cls.Threshold, res.Content, base)
	logger.Debug("%s: %s splitter, %d raw -> %d merged (threshold %d)",
		file.Name, res.Splitter, len(res.Chunks), len(chunks), cls.Threshold)
	return chunks, nil
}
