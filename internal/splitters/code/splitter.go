// Package code provides the syntax-aware splitter used for program source
// and structured data files.
//
// Files with a known Tree-sitter grammar are parsed, and windows close at
// the start of a declaration. Other files fall back to plain line windows.
package code

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// Splitter cuts text into windows of whole lines.
//
// A window holds at most chunkLines lines and maxChars characters. With a
// grammar, a window that would be cut by either cap is pulled back to the
// last declaration it contains, and the next window starts at that
// declaration. Without one, only the character cap pulls the window back,
// to the last blank line or column 0 line.
type Splitter struct {
	name       string
	chunkLines int
	overlap    int
	maxChars   int
	lang       *sitter.Language
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkLines sets the maximum lines per window.
func WithChunkLines(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.chunkLines = n
		}
	}
}

// WithOverlap sets the number of lines repeated between windows.
func WithOverlap(n int) Option {
	return func(s *Splitter) {
		if n >= 0 {
			s.overlap = n
		}
	}
}

// WithMaxChars sets the maximum characters per window.
func WithMaxChars(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// WithName sets the name reported for logging.
func WithName(name string) Option {
	return func(s *Splitter) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLanguage sets the grammar used to find declarations.
func WithLanguage(lang *sitter.Language) Option {
	return func(s *Splitter) {
		s.lang = lang
	}
}

// New creates a splitter. Defaults match Source.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		name:       "code",
		chunkLines: 80,
		overlap:    20,
		maxChars:   2000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.overlap >= s.chunkLines {
		s.overlap = s.chunkLines / 4
	}
	return s
}

// Source returns the splitter for program source files.
func Source() *Splitter {
	return New(WithName("source"), WithChunkLines(80), WithOverlap(20), WithMaxChars(2000))
}

// Structured returns the splitter for XML, YAML and JSON style files.
func Structured() *Splitter {
	return New(WithName("structured"), WithChunkLines(60), WithOverlap(15), WithMaxChars(1800))
}

// ForExtension returns a copy of s bound to the grammar for ext, or s
// itself when no grammar is registered.
func (s *Splitter) ForExtension(ext string) *Splitter {
	lang := Language(ext)
	if lang == nil {
		return s
	}
	c := *s
	c.lang = lang
	return &c
}

// Name returns the splitter name.
func (s *Splitter) Name() string {
	return s.name
}

// Split returns the windows of text in order. Joining a window's lines
// reproduces the source bytes, carriage returns included.
// Windows that hold only whitespace are dropped.
func (s *Splitter) Split(text string, base domain.Metadata) []domain.RawChunk {
	lines, rowStart := s.lines(text)
	decl := s.declarations(text, rowStart, len(lines))
	var chunks []domain.RawChunk

	start := 0
	for start < len(lines) {
		end, atDecl := s.windowEnd(lines, start, decl)

		window := strings.Join(lines[start:end], "\n")
		if !domain.IsBlank(window) {
			chunks = append(chunks, domain.RawChunk{
				Text:     window,
				Index:    len(chunks),
				Metadata: base.Clone(),
			})
		}

		if end >= len(lines) {
			break
		}
		next := end
		if !atDecl {
			next = end - s.overlap
			if next <= start {
				next = end
			}
		}
		start = next
	}
	return chunks
}

// windowEnd returns the exclusive end line of the window beginning at
// start, and whether the window was closed at a declaration.
func (s *Splitter) windowEnd(lines []string, start int, decl []bool) (int, bool) {
	end := start
	chars := 0
	boundary, lastDecl := -1, -1
	overflow := false

	for end < len(lines) && end-start < s.chunkLines {
		n := utf8.RuneCountInString(lines[end])
		if end > start {
			n++ // joining newline
		}
		if end > start && chars+n > s.maxChars {
			overflow = true
			break
		}
		chars += n
		end++
		if end < len(lines) {
			if decl != nil && decl[end] {
				lastDecl = end
			}
			if isBoundary(lines[end]) {
				boundary = end
			}
		}
	}

	switch {
	case end >= len(lines):
		return end, false
	case lastDecl > start:
		return lastDecl, true
	case overflow && boundary > start:
		return boundary, false
	}
	return end, false
}

// lines splits text on '\n', hard-splitting any line longer than maxChars.
// rowStart maps each source row to the index of its first piece.
func (s *Splitter) lines(text string) (out []string, rowStart []int) {
	raw := strings.Split(text, "\n")
	out = make([]string, 0, len(raw))
	rowStart = make([]int, len(raw))
	for row, line := range raw {
		rowStart[row] = len(out)
		if utf8.RuneCountInString(line) <= s.maxChars {
			out = append(out, line)
			continue
		}
		runes := []rune(line)
		for i := 0; i < len(runes); i += s.maxChars {
			out = append(out, string(runes[i:min(i+s.maxChars, len(runes))]))
		}
	}
	return out, rowStart
}

func isBoundary(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(line)
	if unicode.IsSpace(r) {
		return false
	}
	switch r {
	case '}', ')', ']':
		return false
	}
	return true
}
