package memory

import (
	"sync"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/config/values"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Save and Load do nothing, which
// makes it the store of choice for service tests.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore copies the seed maps in order; later maps win.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, m := range seed {
		for k, v := range m {
			s.values[k] = v
		}
	}
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
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

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Save() error  { return nil }
func (s *ConfigStore) Load() error  { return nil }
func (s *ConfigStore) Path() string { return ":memory:" }
