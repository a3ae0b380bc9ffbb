package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "fragmenter version test-version-1.0.0 (")
}

func TestVersionCmd_Short(t *testing.T) {
	originalVersion := version
	version = "1.4.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version", "--short")

	assert.NoError(t, err)
	assert.Equal(t, "1.4.0\n", out)
}

func TestRootCmd_Commands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"init", "index", "query", "inspect", "collect-extensions", "scrape", "mcp", "settings", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_LogsDir(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--logs-dir", dir, "version")

	assert.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	if assert.NotNil(t, port) {
		assert.Equal(t, "0", port.DefValue)
	}
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("storage-dir"))
}
