package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/config/values"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultDirName is the config directory under the user's home.
const DefaultDirName = ".fragmenter"

const fileHeader = "# fragmenter configuration. Edit by hand or with 'fragmenter settings set'.\n\n"

// ConfigStore persists settings as TOML. In memory keys are flat and
// dotted ("embedding.model"); on disk each prefix becomes a table.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// DefaultPath returns ~/.fragmenter/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName, "config.toml"), nil
}

// NewConfigStore opens the store at path, or DefaultPath when path is
// empty. The directory is created; a missing file reads as empty.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}

	s := &ConfigStore{filePath: path}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

func (s *ConfigStore) get(key string) any {
	val, _ := s.Get(key)
	return val
}

func (s *ConfigStore) GetString(key string) string        { return values.String(s.get(key)) }
func (s *ConfigStore) GetInt(key string) int              { return values.Int(s.get(key)) }
func (s *ConfigStore) GetFloat(key string) float64        { return values.Float(s.get(key)) }
func (s *ConfigStore) GetBool(key string) bool            { return values.Bool(s.get(key)) }
func (s *ConfigStore) GetStringSlice(key string) []string { return values.Strings(s.get(key)) }

// Set writes the file immediately. If the write fails the previous value
// is restored, so memory never disagrees with disk.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = value
	if err := s.write(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// write replaces the file through a temp file in the same directory.
// The caller holds mu.
func (s *ConfigStore) write() error {
	body, err := toml.Marshal(nestMap(s.data))
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(append([]byte(fileHeader), body...))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o600)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), s.filePath)
	}
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Load replaces the in-memory values with the file contents.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	tables := make(map[string]any)
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := toml.Unmarshal(raw, &tables); err != nil {
			return fmt.Errorf("parsing %s: %w", s.filePath, err)
		}
	}
	s.data = flattenMap(tables, "")
	return nil
}

func (s *ConfigStore) Path() string {
	return s.filePath
}

// flattenMap turns {"a": {"b": 1}} into {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		nested, ok := value.(map[string]any)
		if !ok {
			out[key] = value
			continue
		}
		for k, v := range flattenMap(nested, key) {
			out[k] = v
		}
	}
	return out
}

// nestMap inverts flattenMap. Sorted order guarantees a key is placed
// before any key it prefixes; a key whose prefix is already a leaf stays
// whole as a quoted root key.
func nestMap(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	root := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		if table, ok := descend(root, parts[:len(parts)-1]); ok {
			table[parts[len(parts)-1]] = flat[key]
		} else {
			root[key] = flat[key]
		}
	}
	return root
}

// descend walks or creates the tables named by path. It reports false if
// a segment is already taken by a leaf value.
func descend(root map[string]any, path []string) (map[string]any, bool) {
	node := root
	for _, part := range path {
		child, exists := node[part]
		if !exists {
			child = make(map[string]any)
			node[part] = child
		}
		table, ok := child.(map[string]any)
		if !ok {
			return nil, false
		}
		node = table
	}
	return node, true
}
