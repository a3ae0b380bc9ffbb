package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService runs chunk production followed by ingestion.
type IndexService struct {
	producer  *Producer
	ingestion *IngestionService
	runs      driven.RunStore
	now       func() time.Time
}

// NewIndexService creates an index service.
// ingestion may be nil when only dry runs are needed; runs is optional.
func NewIndexService(producer *Producer, ingestion *IngestionService, runs driven.RunStore) *IndexService {
	return &IndexService{
		producer:  producer,
		ingestion: ingestion,
		runs:      runs,
		now:       time.Now,
	}
}

// Run indexes every eligible file once.
func (s *IndexService) Run(ctx context.Context, req driving.IndexRequest) (*domain.IndexReport, error) {
	report := &domain.IndexReport{
		RunID:     uuid.NewString(),
		StartedAt: s.now(),
	}
	logger.Section("Indexing")
	logger.Debug("Run %s (dry run: %t)", report.RunID, req.DryRun)

	prod, err := s.producer.Produce(ctx)
	if err != nil {
		return nil, fmt.Errorf("produce chunks: %w", err)
	}
	report.FilesSeen = prod.Files
	report.FilesSkipped = prod.Skipped
	report.Chunks = len(prod.Chunks)

	if req.DryRun {
		report.FinishedAt = s.now()
		return report, nil
	}
	if s.ingestion == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	res, err := s.ingestion.Ingest(ctx, prod.Chunks)
	if res != nil {
		report.Embedded = res.Embedded
		report.Unchanged = res.Unchanged
		report.Deleted = res.Deleted
		report.Failed = res.Failed
	}
	report.FinishedAt = s.now()
	if err != nil {
		return report, fmt.Errorf("ingest: %w", err)
	}

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, *report); err != nil {
			logger.Warn("Failed to record run %s: %v", report.RunID, err)
		}
	}
	logger.Info("Run %s finished in %s", report.RunID, report.Duration().Round(time.Millisecond))
	return report, nil
}

// Watch indexes once and again after every change signal from the file
// source. It returns nil when ctx is cancelled.
func (s *IndexService) Watch(
	ctx context.Context, req driving.IndexRequest, onRun func(*domain.IndexReport, error),
) error {
	changes, err := s.producer.Source().Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch files: %w", err)
	}

	onRun(s.Run(ctx, req))
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("Change detected, re-indexing")
			report, err := s.Run(ctx, req)
			if ctx.Err() != nil {
				return nil
			}
			onRun(report, err)
		}
	}
}
