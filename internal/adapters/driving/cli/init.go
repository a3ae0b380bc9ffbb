package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/config/env"
)

// envFileName is the file written by init.
const envFileName = ".env"

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .env file in the current directory",
	Long: `Writes a .env template with every supported variable.
An existing .env is left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing .env file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	_, err := os.Stat(envFileName)
	switch {
	case err == nil && !initForce:
		return fmt.Errorf("%s already exists, use --force to overwrite", envFileName)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("check %s: %w", envFileName, err)
	}

	if err := os.WriteFile(envFileName, []byte(env.Template), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", envFileName, err)
	}

	cmd.Printf("Created %s\n\n", envFileName)
	cmd.Println("Next steps:")
	cmd.Printf("  1. Edit %s and add your API key(s)\n", envFileName)
	cmd.Println("  2. Scrape documentation (optional):")
	cmd.Println("       fragmenter scrape --url https://docs.example.com --output ./data/docs")
	cmd.Println("  3. Build the index:")
	cmd.Println("       fragmenter index --data-dir ./data --storage-dir ./storage")
	cmd.Println("  4. Ask a question:")
	cmd.Println("       fragmenter query --storage-dir ./storage --query 'your question'")
	return nil
}
