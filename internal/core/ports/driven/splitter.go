package driven

import (
	"context"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// Splitter produces natural chunk boundaries for a file's text.
// Splitters never enforce a minimum size; that is the merge stage's job.
type Splitter interface {
	// Name returns the splitter name for logging.
	Name() string

	// Split returns raw chunks in document order. Each chunk's metadata
	// starts from a copy of base.
	Split(text string, base domain.Metadata) []domain.RawChunk
}

// PageExtractor extracts page text from a paginated binary format.
type PageExtractor interface {
	// Pages returns the pages of content in order.
	// Returns domain.ErrUndecodable when the content cannot be parsed.
	Pages(content []byte) ([]domain.Page, error)
}

// ChunkProcessor transforms merged chunks after change detection.
// Processors are chained in a pipeline and only see new or changed chunks.
type ChunkProcessor interface {
	// Name returns the processor name for logging.
	Name() string

	// Process returns the transformed chunks. A processor must not drop chunks.
	Process(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// KeywordExtractor derives a small set of keywords from chunk text.
type KeywordExtractor interface {
	// Extract returns at most n keywords for text.
	Extract(ctx context.Context, text string, n int) ([]string, error)
}
