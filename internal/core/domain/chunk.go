package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// SourceFile is a file discovered during traversal.
// It is read once and discarded after chunk production.
type SourceFile struct {
	// Path is the absolute path and the identity of the file.
	Path string

	// Name is the base name.
	Name string

	// Extension is the lowercased suffix including the dot, or "".
	Extension string

	// Classification is the resolved category, threshold and strategy.
	Classification Classification

	// Content is the raw bytes as read from disk.
	Content []byte
}

// RawChunk is a contiguous piece of a file produced by a splitter.
// It is never persisted; it always passes through the merge engine.
type RawChunk struct {
	// Text is the chunk content.
	Text string

	// Index is the position within the file, starting at 0.
	Index int

	// Metadata is splitter-level metadata such as a PDF page label.
	Metadata Metadata
}

// IsBlank returns true if the text is empty or whitespace-only.
func (c RawChunk) IsBlank() bool {
	return IsBlank(c.Text)
}

// Chunk is a merged chunk ready for embedding and storage.
type Chunk struct {
	// ID is the stable content hash assigned at ingestion.
	ID string

	// Text is the newline-joined content of the contributing raw chunks.
	Text string

	// Metadata is the file metadata overlaid with the raw chunks' metadata.
	Metadata Metadata

	// Embedding is the vector representation, filled in at ingestion.
	Embedding []float32
}

// IsBlank returns true if the text is empty or whitespace-only.
func (c Chunk) IsBlank() bool {
	return IsBlank(c.Text)
}

// StoredChunk is a document store entry.
type StoredChunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Metadata  Metadata  `json:"metadata"`
	IndexedAt time.Time `json:"indexed_at"`
}

// RetrievedChunk is a vector store hit.
type RetrievedChunk struct {
	Chunk Chunk

	// Score is the cosine similarity to the query vector.
	Score float64
}

// Page is one page of text extracted from a paginated document.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Label is the printable page label.
	Label string

	Text string
}

// IsBlank returns true if s is empty or whitespace-only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// TrimmedLen returns the character count of s with surrounding whitespace removed.
func TrimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// Preview returns at most n characters of s.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
