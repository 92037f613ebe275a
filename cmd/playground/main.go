package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/markuplab/playground/cmd/playground/commands"
	"github.com/markuplab/playground/logger"
)

var jsonLogs bool

var rootCmd = &cobra.Command{
	Use:   "playground",
	Short: "Markup playground - live HTML editing with completion and preview",
	Long: `Markup playground backend for interactive HTML exercises.

The server pairs an abbreviation-aware completion engine with a debounced
shared document store and a sandboxed live preview.

Available commands:
  serve   - Start the playground server (WebSocket, LSP, preview)
  vocab   - Inspect the completion vocabulary
  version - Show version information

Examples:
  playground serve                  # Start on the default port
  playground serve --port 9000 -v   # Custom port with info logging
  playground vocab                  # Print the active tag vocabulary`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(jsonLogs, logger.VerbosityToLevel(verbosity)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON instead of console output")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.VocabCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
