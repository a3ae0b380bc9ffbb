package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fragmenter/internal/adapters/driving/mcp"
	"github.com/custodia-labs/fragmenter/internal/app"
)

var mcpStorageDir string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server that exposes the index to AI assistants.

Tools:
  retrieve - the chunks most similar to a query
  ask      - an answer generated from the retrieved chunks

By default the server speaks JSON-RPC over stdio. Use --port to serve
HTTP instead, for example to test with the MCP Inspector.

Examples:
  # Stdio mode (for desktop assistants)
  fragmenter mcp serve --storage-dir ./storage

  # HTTP mode
  fragmenter mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "fragmenter": {
        "command": "/path/to/fragmenter",
        "args": ["mcp", "serve", "--storage-dir", "/path/to/storage"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVarP(&mcpStorageDir, "storage-dir", "s", app.DefaultStorageDir, "index storage directory")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	// The ask tool reports a missing LLM per call; retrieve still works.
	querier, queryCloser, err := newQuerier(cmd.Context(), cfg, mcpStorageDir, false)
	if err != nil {
		return err
	}
	defer queryCloser.Close()

	inspector, inspectCloser, err := newInspector(cmd.Context(), cfg, mcpStorageDir)
	if err != nil {
		return err
	}
	defer inspectCloser.Close()

	server, err := mcp.NewServer(&mcp.Ports{
		Query:   querier,
		Inspect: inspector,
	}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
