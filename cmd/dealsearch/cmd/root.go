// Package cmd provides the CLI commands for dealsearch.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dealsearch/dealsearch/internal/logging"
	"github.com/dealsearch/dealsearch/pkg/version"
)

var debugMode bool
var loggingCleanup func()

// NewRootCmd creates the root command for the dealsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dealsearch",
		Short: "Hybrid keyword/fuzzy/semantic search over a grocery deals catalog",
		Long: `dealsearch ranks promotional deals against a free-text query by
combining exact keyword matching, typo-tolerant fuzzy matching, and
embedding-based semantic similarity into a single composite score.

Build an index once with 'dealsearch index build', then query it with
'dealsearch search <query>'.`,
		Version:            version.String(),
		PersistentPreRunE:  startLogging,
		PersistentPostRunE: stopLogging,
	}

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging to ~/.dealsearch/logs/")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
