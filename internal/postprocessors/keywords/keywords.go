// Package keywords enriches chunks with LLM-extracted keywords.
//
// Every chunk costs one LLM call, so the processor only ever sees chunks
// that are new or changed since the last run.
package keywords

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// Name is the registry name of the processor.
const Name = "keywords"

// MaxKeywords caps the keywords stored per chunk.
const MaxKeywords = 5

const prompt = `%s

Give %d unique keywords for this document. Format as comma separated. Keywords: `

// Ensure the types implement the interfaces.
var (
	_ driven.KeywordExtractor = (*Extractor)(nil)
	_ driven.ChunkProcessor   = (*Processor)(nil)
)

// Extractor asks an LLM for keywords.
type Extractor struct {
	llm driven.LLMService
}

// NewExtractor creates an extractor backed by llm.
func NewExtractor(llm driven.LLMService) *Extractor {
	return &Extractor{llm: llm}
}

// Extract returns at most n keywords for text, never more than MaxKeywords.
func (e *Extractor) Extract(ctx context.Context, text string, n int) ([]string, error) {
	if n <= 0 || n > MaxKeywords {
		n = MaxKeywords
	}
	resp, err := e.llm.Generate(ctx, fmt.Sprintf(prompt, text, n), driven.GenerateOptions{
		MaxTokens:   64,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}
	return Parse(resp, n), nil
}

// Parse splits an LLM reply into at most n unique, trimmed keywords.
func Parse(reply string, n int) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, n)
	for _, f := range fields {
		f = strings.Trim(strings.TrimSpace(f), `"'.-*`)
		f = strings.TrimSpace(f)
		key := strings.ToLower(f)
		if f == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
		if len(out) == n {
			break
		}
	}
	return out
}

// Processor attaches keywords to chunk metadata.
type Processor struct {
	extractor driven.KeywordExtractor
	count     int
}

// Option configures the processor.
type Option func(*Processor)

// WithCount sets the number of keywords requested per chunk.
func WithCount(n int) Option {
	return func(p *Processor) {
		if n > 0 && n <= MaxKeywords {
			p.count = n
		}
	}
}

// NewProcessor creates a keyword processor.
func NewProcessor(extractor driven.KeywordExtractor, opts ...Option) *Processor {
	p := &Processor{extractor: extractor, count: MaxKeywords}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process sets the keywords key on every chunk. A chunk whose extraction
// fails is logged and passed through unchanged. Cancellation stops early
// and returns the context error.
func (p *Processor) Process(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = c
		kws, err := p.extractor.Extract(ctx, c.Text, p.count)
		if err != nil {
			logger.Warn("Keyword extraction failed for %s: %v", c.Metadata.String(domain.KeyFileName), err)
			continue
		}
		if len(kws) == 0 {
			continue
		}
		md := c.Metadata.Clone()
		md[domain.KeyKeywords] = kws
		out[i].Metadata = md
	}
	return out, nil
}
