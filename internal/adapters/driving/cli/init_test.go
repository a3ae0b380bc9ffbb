package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/config/env"
)

func TestInitCmd(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created .env")
	assert.Contains(t, out, "fragmenter index --data-dir")

	data, err := os.ReadFile(".env")
	require.NoError(t, err)
	assert.Equal(t, env.Template, string(data))

	t.Run("refuses to overwrite", func(t *testing.T) {
		require.NoError(t, os.WriteFile(".env", []byte("KEEP=1\n"), 0o600))

		_, err := execute(t, "init")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")

		data, err := os.ReadFile(".env")
		require.NoError(t, err)
		assert.Equal(t, "KEEP=1\n", string(data))
	})

	t.Run("force overwrites", func(t *testing.T) {
		_, err := execute(t, "init", "--force")
		require.NoError(t, err)

		data, err := os.ReadFile(".env")
		require.NoError(t, err)
		assert.Equal(t, env.Template, string(data))
	})
}
