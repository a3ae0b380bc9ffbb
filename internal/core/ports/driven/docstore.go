package driven

import "github.com/custodia-labs/fragmenter/internal/core/domain"

// DocStore is the document store snapshot used for change detection.
// It maps chunk id to stored text and metadata, and survives across runs.
type DocStore interface {
	// Load reads the snapshot from storage. A missing snapshot is empty, not an error.
	Load() error

	// Save writes the snapshot to storage.
	Save() error

	// Get returns the entry for id.
	Get(id string) (domain.StoredChunk, bool)

	// Put stores or replaces an entry.
	Put(entry domain.StoredChunk)

	// Delete removes an entry. Unknown ids are ignored.
	Delete(id string)

	// IDs returns every stored id in sorted order.
	IDs() []string

	// All returns every stored entry ordered by id.
	All() []domain.StoredChunk

	// Len returns the number of entries.
	Len() int

	// Clear removes every entry.
	Clear()

	// Path returns the snapshot location.
	Path() string
}
