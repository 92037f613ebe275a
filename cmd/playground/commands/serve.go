package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/markuplab/playground/config"
	"github.com/markuplab/playground/errors"
	"github.com/markuplab/playground/server"
)

// ServeCmd starts the playground server.
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the playground server",
	Long: `Launch the playground backend. Serves the playground WebSocket protocol
on /ws, LSP completion on /lsp, and the sandboxed preview page on /preview.`,
	RunE: runServe,
}

var (
	servePort       int
	serveConfigPath string
	serveVocabPath  string
)

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	ServeCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a playground.toml config file")
	ServeCmd.Flags().StringVar(&serveVocabPath, "vocab", "", "Path to a vocabulary TOML file (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Default to 1 (Info) for the server so startup events are visible
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		verbosity = 1
	}

	var cfg *config.Config
	var err error
	if serveConfigPath != "" {
		cfg, err = config.LoadFromFile(serveConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	if serveVocabPath != "" {
		cfg.Vocab.Path = serveVocabPath
	}

	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	srv, err := server.New(cfg, verbosity)
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	printStartupBanner(verbosity, port, cfg.Vocab.Path)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed to start")
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Shutdown()
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return fmt.Errorf("shutdown error: %w", err)
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}
