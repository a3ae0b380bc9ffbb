// Package jsonfile persists the document store snapshot as a JSON file.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure DocStore implements the interface.
var _ driven.DocStore = (*DocStore)(nil)

// FileName is the snapshot file inside the storage directory.
const FileName = "docstore.json"

const formatVersion = 1

// snapshot is the on-disk layout.
type snapshot struct {
	Version int                    `json:"version"`
	Chunks  map[string]storedEntry `json:"chunks"`
}

type storedEntry struct {
	Text      string          `json:"text"`
	Metadata  domain.Metadata `json:"metadata"`
	IndexedAt string          `json:"indexed_at,omitempty"`
}

// DocStore is a memory.DocStore that loads from and saves to a JSON file.
type DocStore struct {
	*memory.DocStore
	path string
}

// NewDocStore returns an empty store for <dir>/docstore.json. Call Load to read it.
func NewDocStore(dir string) *DocStore {
	return &DocStore{
		DocStore: memory.NewDocStore(),
		path:     filepath.Join(dir, FileName),
	}
}

// Path returns the snapshot file path.
func (s *DocStore) Path() string {
	return s.path
}

// Load replaces the contents with the snapshot on disk.
// A missing file loads as empty.
func (s *DocStore) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading docstore: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: parsing docstore %s: %w", domain.ErrUndecodable, s.path, err)
	}
	if snap.Version > formatVersion {
		return fmt.Errorf("%w: docstore version %d is newer than supported %d",
			domain.ErrInvalidInput, snap.Version, formatVersion)
	}

	entries := make([]domain.StoredChunk, 0, len(snap.Chunks))
	for id, e := range snap.Chunks {
		entry := domain.StoredChunk{ID: id, Text: e.Text, Metadata: e.Metadata}
		if e.IndexedAt != "" {
			if err := entry.IndexedAt.UnmarshalText([]byte(e.IndexedAt)); err != nil {
				return fmt.Errorf("%w: chunk %s indexed_at: %w", domain.ErrUndecodable, id, err)
			}
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	s.Replace(entries)
	return nil
}

// Save writes the snapshot through a temp file and rename.
func (s *DocStore) Save() error {
	snap := snapshot{Version: formatVersion, Chunks: make(map[string]storedEntry, s.Len())}
	for _, e := range s.All() {
		entry := storedEntry{Text: e.Text, Metadata: e.Metadata}
		if !e.IndexedAt.IsZero() {
			ts, err := e.IndexedAt.MarshalText()
			if err != nil {
				return fmt.Errorf("chunk %s indexed_at: %w", e.ID, err)
			}
			entry.IndexedAt = string(ts)
		}
		snap.Chunks[e.ID] = entry
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding docstore: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing docstore: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing docstore: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing docstore: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replacing docstore: %w", err)
	}
	return nil
}
