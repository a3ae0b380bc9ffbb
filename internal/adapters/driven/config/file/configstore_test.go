package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "config.toml")

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestDefaultPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".fragmenter", "config.toml"), path)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/config.toml")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(path)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("f", 0.25))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("list", []string{".x", ".y"}))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{name: "string", got: store.GetString("s"), want: "hello"},
		{name: "string wrong type", got: store.GetString("i"), want: ""},
		{name: "int", got: store.GetInt("i"), want: 42},
		{name: "int wrong type", got: store.GetInt("s"), want: 0},
		{name: "float", got: store.GetFloat("f"), want: 0.25},
		{name: "float from int", got: store.GetFloat("i"), want: 42.0},
		{name: "float missing", got: store.GetFloat("nope"), want: 0.0},
		{name: "bool", got: store.GetBool("b"), want: true},
		{name: "bool wrong type", got: store.GetBool("s"), want: false},
		{name: "slice", got: store.GetStringSlice("list"), want: []string{".x", ".y"}},
		{name: "slice wrong type", got: store.GetStringSlice("s"), want: []string(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := newStore(t)

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_PersistsDottedKeysAsTables(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))
	require.NoError(t, store.Set("embedding.batch_size", 8))
	require.NoError(t, store.Set("index.extra_extensions", []string{".proto"}))
	require.NoError(t, store.Set("llm.temperature", 0.2))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[embedding]")
	assert.Contains(t, string(raw), "[index]")

	reloaded, err := NewConfigStore(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", reloaded.GetString("embedding.model"))
	assert.Equal(t, 8, reloaded.GetInt("embedding.batch_size"))
	assert.Equal(t, []string{".proto"}, reloaded.GetStringSlice("index.extra_extensions"))
	assert.InDelta(t, 0.2, reloaded.GetFloat("llm.temperature"), 1e-9)
}

func TestConfigStore_ReadsHandWrittenTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[chunking]
min_code = 300
min_docs = 120

[store]
backend = "postgres"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, 300, store.GetInt("chunking.min_code"))
	assert.Equal(t, 120, store.GetInt("chunking.min_docs"))
	assert.Equal(t, "postgres", store.GetString("store.backend"))
}

func TestConfigStore_EmptyAndCommentOnlyFiles(t *testing.T) {
	for name, content := range map[string]string{"empty": "", "comment": "# Just a comment\n\n"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			store, err := NewConfigStore(path)
			require.NoError(t, err)

			_, ok := store.Get("any_key")
			assert.False(t, ok)
		})
	}
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SaveExplicit(t *testing.T) {
	store := newStore(t)

	store.mu.Lock()
	store.data["manual_key"] = "manual_value"
	store.mu.Unlock()
	require.NoError(t, store.Save())

	reloaded, err := NewConfigStore(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "manual_value", reloaded.GetString("manual_key"))
}

func TestConfigStore_SetFailureRestoresValue(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("key", "original"))

	// Channels cannot be marshalled to TOML.
	err := store.Set("key", make(chan int))
	assert.Error(t, err)
	assert.Equal(t, "original", store.GetString("key"))

	err = store.Set("fresh", make(chan int))
	assert.Error(t, err)
	_, ok := store.Get("fresh")
	assert.False(t, ok)
}

func TestConfigStore_SaveWriteError(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("test", "value"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()
}

func TestNestMap(t *testing.T) {
	got := nestMap(map[string]any{
		"a":     1,
		"a.b":   2,
		"x.y.z": "deep",
		"x.w":   true,
	})

	assert.Equal(t, 1, got["a"])
	assert.Equal(t, 2, got["a.b"])
	assert.Equal(t, map[string]any{"y": map[string]any{"z": "deep"}, "w": true}, got["x"])

	back := flattenMap(got, "")
	assert.Equal(t, map[string]any{"a": 1, "a.b": 2, "x.y.z": "deep", "x.w": true}, back)
}
