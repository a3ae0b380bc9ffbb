// Package markdown splits markdown documents at headings.
package markdown

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/splitters/text"
)

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// Splitter cuts markdown into one section per heading. Sections longer
// than the text splitter's chunk size are split again as prose.
//
// Headings are found in the parsed document, so a "#" line inside a
// fenced code block never starts a section.
type Splitter struct {
	md   goldmark.Markdown
	text *text.Splitter
}

// New creates a markdown splitter that re-splits oversized sections with t.
// A nil t uses the default text splitter.
func New(t *text.Splitter) *Splitter {
	if t == nil {
		t = text.New()
	}
	return &Splitter{md: goldmark.New(), text: t}
}

// Name returns the splitter name.
func (s *Splitter) Name() string {
	return "markdown"
}

// Split returns the sections of src in order. Each chunk carries the
// path of enclosing headings under header_path.
func (s *Splitter) Split(src string, base domain.Metadata) []domain.RawChunk {
	var chunks []domain.RawChunk
	for _, sec := range s.sections(src) {
		body := strings.TrimSpace(sec.text)
		if body == "" {
			continue
		}
		pieces := []string{body}
		if utf8.RuneCountInString(body) > s.text.ChunkSize() {
			pieces = s.text.Texts(body)
		}
		for _, p := range pieces {
			md := base.Clone()
			md[domain.KeyHeaderPath] = sec.path
			chunks = append(chunks, domain.RawChunk{Text: p, Index: len(chunks), Metadata: md})
		}
	}
	return chunks
}

type section struct {
	text string
	path string
}

type heading struct {
	offset int
	level  int
	title  string
}

// sections cuts src at the start line of every top-level heading.
func (s *Splitter) sections(src string) []section {
	source := []byte(src)
	doc := s.md.Parser().Parse(gmtext.NewReader(source))

	var headings []heading
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		start := h.Lines().At(0).Start
		headings = append(headings, heading{
			offset: lineStart(source, start),
			level:  h.Level,
			title:  strings.TrimSpace(string(h.Lines().Value(source))),
		})
	}

	var out []section
	prev := 0
	var stack []heading
	path := "/"
	for _, h := range headings {
		if h.offset > prev {
			out = append(out, section{text: src[prev:h.offset], path: path})
		}
		for len(stack) > 0 && stack[len(stack)-1].level >= h.level {
			stack = stack[:len(stack)-1]
		}
		path = headerPath(stack)
		stack = append(stack, h)
		prev = h.offset
	}
	return append(out, section{text: src[prev:], path: path})
}

// headerPath renders the enclosing headings as "/A/B/".
func headerPath(stack []heading) string {
	var b strings.Builder
	b.WriteByte('/')
	for _, h := range stack {
		b.WriteString(h.title)
		b.WriteByte('/')
	}
	return b.String()
}

func lineStart(source []byte, pos int) int {
	for pos > 0 && source[pos-1] != '\n' {
		pos--
	}
	return pos
}
