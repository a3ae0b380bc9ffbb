// Package pdf extracts page text from PDF documents.
//
// It uses ledongthuc/pdf, a pure Go reader, so no external tools are needed.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.PageExtractor = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Pages returns the non-blank pages of content. The label of each page is
// its 1-based number.
func (n *Normaliser) Pages(content []byte) (pages []domain.Page, err error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty PDF content", domain.ErrUndecodable)
	}

	// The reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: malformed PDF: %v", domain.ErrUndecodable, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", domain.ErrUndecodable, err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable pages
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, domain.Page{
			Number: i,
			Label:  strconv.Itoa(i),
			Text:   text,
		})
	}
	return pages, nil
}

// Text joins page texts with blank lines.
func Text(pages []domain.Page) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n\n")
}
