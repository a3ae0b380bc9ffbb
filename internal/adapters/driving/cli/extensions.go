package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/fragmenter/internal/connectors/filesystem"
)

// defaultExtensionsDir is scanned when no directory is given.
const defaultExtensionsDir = "data/code"

var extensionsIncludeGit bool

var extensionsCmd = &cobra.Command{
	Use:   "collect-extensions [dir]",
	Short: "List the file extensions found in a directory",
	Long: `Scans a directory tree and prints every unique file extension.
Files without an extension are listed by name. Useful before choosing
extra extensions to index.`,
	Example: `  fragmenter collect-extensions
  fragmenter collect-extensions ./my-project --include-git`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCollectExtensions,
}

func init() {
	extensionsCmd.Flags().BoolVar(&extensionsIncludeGit, "include-git", false, "include .git directories in the scan")
	rootCmd.AddCommand(extensionsCmd)
}

func runCollectExtensions(cmd *cobra.Command, args []string) error {
	dir := defaultExtensionsDir
	if len(args) > 0 {
		dir = args[0]
	}

	exts, err := filesystem.CollectExtensions(cmd.Context(), dir, extensionsIncludeGit)
	if err != nil {
		return err
	}

	if len(exts) == 0 {
		cmd.Printf("No files found in %s\n", dir)
		return nil
	}
	cmd.Printf("Found %d unique extensions in %s:\n", len(exts), dir)
	for _, ext := range exts {
		cmd.Printf("  %s\n", ext)
	}
	return nil
}
