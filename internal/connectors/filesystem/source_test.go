package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/classifier"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newSource(t *testing.T, root string, opts ...Option) *Source {
	t.Helper()
	s, err := New(root, classifier.New(domain.DefaultThresholds()), opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "x")

	tests := []struct {
		name    string
		root    string
		wantErr bool
	}{
		{name: "directory", root: dir},
		{name: "missing", root: filepath.Join(dir, "missing"), wantErr: true},
		{name: "file", root: file, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.root, classifier.New(domain.DefaultThresholds()))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(s.Root()))
		})
	}
}

func TestSource_Files(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "repo/main.py", "print(1)")
	writeFile(t, root, "repo/README.md", "# readme")
	writeFile(t, root, "repo/Makefile", "all:")
	writeFile(t, root, "repo/.git/config", "[core]")
	writeFile(t, root, "repo/logo.png", "png")
	writeFile(t, root, "repo/data.bin", "bin")
	writeFile(t, root, "docs/guide.txt", "guide")

	files, err := newSource(t, root).Files(context.Background())
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f))
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"docs/guide.txt", "repo/Makefile", "repo/README.md", "repo/main.py"}, rel)
}

func TestSource_FilesCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSource(t, root).Files(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_ReadFile(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.txt", "hello")

	data, err := newSource(t, root).ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSource_HandleEvent(t *testing.T) {
	root := t.TempDir()
	s := newSource(t, root)
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	pyFile := writeFile(t, root, "main.py", "print(1)")
	require.NoError(t, os.Mkdir(filepath.Join(root, "pkg"), 0755))

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "write eligible", event: fsnotify.Event{Name: pyFile, Op: fsnotify.Write}, want: true},
		{name: "create eligible", event: fsnotify.Event{Name: pyFile, Op: fsnotify.Create}, want: true},
		{name: "remove eligible", event: fsnotify.Event{Name: filepath.Join(root, "gone.py"), Op: fsnotify.Remove}, want: true},
		{name: "chmod ignored", event: fsnotify.Event{Name: pyFile, Op: fsnotify.Chmod}, want: false},
		{name: "ineligible", event: fsnotify.Event{Name: filepath.Join(root, "x.png"), Op: fsnotify.Write}, want: false},
		{name: "git internals", event: fsnotify.Event{Name: filepath.Join(root, ".git", "index"), Op: fsnotify.Write}, want: false},
		{name: "new directory", event: fsnotify.Event{Name: filepath.Join(root, "pkg"), Op: fsnotify.Create}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.handleEvent(watcher, tt.event))
		})
	}
}

func TestSource_Watch(t *testing.T) {
	root := t.TempDir()
	s := newSource(t, root, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := s.Watch(ctx)
	require.NoError(t, err)

	// A burst of writes settles into one signal.
	for i := 0; i < 3; i++ {
		writeFile(t, root, "notes.md", "# v"+string(rune('0'+i)))
	}

	select {
	case _, ok := <-changes:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change signal")
	}

	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestSource_WatchMissingRoot(t *testing.T) {
	root := t.TempDir()
	s := newSource(t, root)
	require.NoError(t, os.RemoveAll(root))

	_, err := s.Watch(context.Background())
	assert.Error(t, err)
}
