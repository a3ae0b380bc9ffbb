package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/connectors/filesystem"
)

func TestCollectExtensionsCmd(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"main.py", "lib/util.py", "Makefile", ".git/HEAD"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	t.Run("git excluded", func(t *testing.T) {
		out, err := execute(t, "collect-extensions", dir)

		require.NoError(t, err)
		assert.Contains(t, out, "Found 2 unique extensions")
		assert.Contains(t, out, "  .py\n")
		assert.Contains(t, out, "  Makefile\n")
		assert.NotContains(t, out, "HEAD")
	})

	t.Run("git included", func(t *testing.T) {
		out, err := execute(t, "collect-extensions", dir, "--include-git")

		require.NoError(t, err)
		assert.Contains(t, out, "Found 3 unique extensions")
		assert.Contains(t, out, "  HEAD\n")
	})

	t.Run("empty dir", func(t *testing.T) {
		out, err := execute(t, "collect-extensions", t.TempDir())

		require.NoError(t, err)
		assert.Contains(t, out, "No files found")
	})

	t.Run("not a directory", func(t *testing.T) {
		_, err := execute(t, "collect-extensions", filepath.Join(dir, "main.py"))
		assert.ErrorIs(t, err, filesystem.ErrNotDirectory)
	})

	t.Run("too many args", func(t *testing.T) {
		_, err := execute(t, "collect-extensions", dir, dir)
		assert.Error(t, err)
	})
}
