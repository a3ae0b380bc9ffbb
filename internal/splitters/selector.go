// Package splitters selects and runs the splitter for a classified file.
//
// The selector never applies size thresholds. Its output always goes
// through the merge stage.
package splitters

import (
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/normalisers/pdf"
	"github.com/custodia-labs/fragmenter/internal/splitters/code"
	"github.com/custodia-labs/fragmenter/internal/splitters/markdown"
	"github.com/custodia-labs/fragmenter/internal/splitters/text"
)

// Result is the decoded content of a file and its raw chunks.
type Result struct {
	// Content is the decoded full text. For PDFs it is the joined page text.
	Content string

	// Chunks are the raw chunks in document order.
	Chunks []domain.RawChunk

	// Splitter names the splitter that produced Chunks.
	Splitter string
}

// Selector maps split strategies to splitters.
type Selector struct {
	text       *text.Splitter
	markdown   *markdown.Splitter
	source     *code.Splitter
	structured *code.Splitter
	pages      driven.PageExtractor
}

// Option configures the selector.
type Option func(*Selector)

// WithPageExtractor replaces the PDF page extractor.
func WithPageExtractor(p driven.PageExtractor) Option {
	return func(s *Selector) {
		if p != nil {
			s.pages = p
		}
	}
}

// NewSelector creates a selector from chunking settings.
func NewSelector(cfg domain.ChunkingSettings, opts ...Option) *Selector {
	t := text.New(text.WithChunkSize(cfg.TextChunkSize), text.WithOverlap(cfg.TextOverlap))
	s := &Selector{
		text:       t,
		markdown:   markdown.New(t),
		source:     code.Source(),
		structured: code.Structured(),
		pages:      pdf.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns the splitter for a strategy. PDF pages use the text splitter.
func (s *Selector) Select(strategy domain.SplitStrategy) driven.Splitter {
	switch strategy {
	case domain.StrategyMarkdown:
		return s.markdown
	case domain.StrategySource:
		return s.source
	case domain.StrategyStructured:
		return s.structured
	default:
		return s.text
	}
}

// Split decodes file and splits it. Every chunk's metadata starts from base.
// Returns domain.ErrUndecodable for non-UTF-8 text or an unreadable PDF.
func (s *Selector) Split(file *domain.SourceFile, base domain.Metadata) (*Result, error) {
	if file.Classification.Strategy == domain.StrategyPDF {
		return s.splitPDF(file, base)
	}

	if !utf8.Valid(file.Content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrUndecodable, file.Name)
	}
	content := string(file.Content)
	splitter := s.forFile(file)

	return &Result{
		Content:  content,
		Chunks:   splitter.Split(content, base),
		Splitter: splitter.Name(),
	}, nil
}

// forFile is Select with the code splitters bound to the file's grammar.
func (s *Selector) forFile(file *domain.SourceFile) driven.Splitter {
	switch file.Classification.Strategy {
	case domain.StrategySource:
		return s.source.ForExtension(file.Extension)
	case domain.StrategyStructured:
		return s.structured.ForExtension(file.Extension)
	}
	return s.Select(file.Classification.Strategy)
}

func (s *Selector) splitPDF(file *domain.SourceFile, base domain.Metadata) (*Result, error) {
	pages, err := s.pages.Pages(file.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}

	var chunks []domain.RawChunk
	for _, page := range pages {
		md := base.Clone()
		md[domain.KeyPageLabel] = page.Label
		for _, c := range s.text.Split(page.Text, md) {
			c.Index = len(chunks)
			chunks = append(chunks, c)
		}
	}

	return &Result{
		Content:  pdf.Text(pages),
		Chunks:   chunks,
		Splitter: "pdf",
	}, nil
}
