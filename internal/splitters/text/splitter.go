// Package text provides the catch-all paragraph/sentence splitter.
//
// Text is split at paragraph separators first, then at sentence ends,
// then at word boundaries, and the pieces are packed greedily up to the
// target size. Each chunk after the first starts with a word-aligned
// tail of its predecessor.
package text

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// DefaultChunkSize is the default target chunk size in characters.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default overlap in characters.
const DefaultChunkOverlap = 200

// DefaultParagraphSeparator separates paragraphs.
const DefaultParagraphSeparator = "\n\n"

// Splitter splits prose into overlapping chunks.
type Splitter struct {
	chunkSize int
	overlap   int
	separator string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithParagraphSeparator sets the paragraph separator.
func WithParagraphSeparator(sep string) Option {
	return func(s *Splitter) {
		if sep != "" {
			s.separator = sep
		}
	}
}

// New creates a text splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		separator: DefaultParagraphSeparator,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Name returns the splitter name.
func (s *Splitter) Name() string {
	return "text"
}

// ChunkSize returns the target chunk size in characters.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Split splits text into raw chunks carrying a copy of base.
func (s *Splitter) Split(text string, base domain.Metadata) []domain.RawChunk {
	texts := s.Texts(text)
	chunks := make([]domain.RawChunk, 0, len(texts))
	for i, t := range texts {
		chunks = append(chunks, domain.RawChunk{Text: t, Index: i, Metadata: base.Clone()})
	}
	return chunks
}

// Texts splits text and returns the chunk texts only.
func (s *Splitter) Texts(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if runeLen(text) <= s.chunkSize {
		return []string{text}
	}
	return s.pack(s.segments(text))
}

// segment is a piece no longer than chunkSize. para marks the first
// piece of a paragraph, which is joined with the paragraph separator.
type segment struct {
	text string
	para bool
}

func (s *Splitter) segments(text string) []segment {
	var out []segment
	for _, p := range strings.Split(text, s.separator) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if runeLen(p) <= s.chunkSize {
			out = append(out, segment{text: p, para: true})
			continue
		}
		for i, piece := range s.sentences(p) {
			out = append(out, segment{text: piece, para: i == 0})
		}
	}
	return out
}

// sentences splits a paragraph at sentence ends, falling back to words
// for sentences that are still too long.
func (s *Splitter) sentences(p string) []string {
	var out []string
	start := 0
	for _, end := range sentenceBoundaries(p) {
		out = s.appendPiece(out, p[start:end])
		start = end
	}
	return s.appendPiece(out, p[start:])
}

func (s *Splitter) appendPiece(out []string, piece string) []string {
	piece = strings.TrimSpace(piece)
	if piece == "" {
		return out
	}
	if runeLen(piece) <= s.chunkSize {
		return append(out, piece)
	}
	return append(out, splitWords(piece, s.chunkSize)...)
}

// pack greedily joins segments up to chunkSize with overlap.
func (s *Splitter) pack(segments []segment) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, seg := range segments {
		joiner := " "
		if seg.para {
			joiner = s.separator
		}
		segLen := runeLen(seg.text)

		if currentLen > 0 && currentLen+runeLen(joiner)+segLen > s.chunkSize {
			chunk := current.String()
			chunks = append(chunks, chunk)
			current.Reset()
			currentLen = 0

			tail := overlapSuffix(chunk, s.overlap)
			if tail != "" && runeLen(tail)+1+segLen <= s.chunkSize {
				current.WriteString(tail)
				currentLen = runeLen(tail)
				joiner = " "
			}
		}

		if currentLen > 0 {
			current.WriteString(joiner)
			currentLen += runeLen(joiner)
		}
		current.WriteString(seg.text)
		currentLen += segLen
	}

	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// overlapSuffix returns at most n trailing characters of text, starting
// at a word boundary.
func overlapSuffix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return strings.TrimSpace(text)
	}
	suffix := string(runes[len(runes)-n:])
	if idx := strings.IndexAny(suffix, " \n\t"); idx >= 0 {
		return strings.TrimSpace(suffix[idx+1:])
	}
	return ""
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
