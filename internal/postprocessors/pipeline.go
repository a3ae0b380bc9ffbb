// Package postprocessors chains chunk enrichment steps run at ingestion.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.ChunkProcessor = (*Pipeline)(nil)

// Pipeline chains multiple ChunkProcessors and runs them in order.
type Pipeline struct {
	processors []driven.ChunkProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.ChunkProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return "pipeline"
}

// Process runs the chunks through all processors in order.
// A processor that changes the number of chunks is an error.
func (p *Pipeline) Process(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for _, processor := range p.processors {
		out, err := processor.Process(ctx, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
		if len(out) != len(chunks) {
			return nil, fmt.Errorf("processor %s: returned %d chunks for %d", processor.Name(), len(out), len(chunks))
		}
		chunks = out
	}

	return chunks, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.ChunkProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// Names returns processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, processor := range p.processors {
		names[i] = processor.Name()
	}
	return names
}
