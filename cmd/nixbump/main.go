package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/obentoo/nixbump/internal/common/logger"
	"github.com/obentoo/nixbump/internal/common/output"
	"github.com/spf13/cobra"
)

var (
	rootDir    string
	verbose    bool
	quiet      bool
	noColor    bool
	forceColor bool
	logFile    bool
)

var rootCmd = &cobra.Command{
	Use:   "nixbump",
	Short: "Keep a Nix package in sync with its upstream releases",
	Long: `nixbump checks the latest GitHub release of an upstream project against
the version record of a Nix packaging repository. When a newer release exists
it runs the install step, rewrites the version record, regenerates the
dependency manifests and commits the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Configure logging based on flags
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		switch {
		case noColor:
			output.NoColor()
		case forceColor:
			output.ForceColor()
		}
		if logFile {
			return logger.EnableFileLogging()
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Packaging repository root")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&forceColor, "color", false, "Force colored output even when not a terminal")
	rootCmd.PersistentFlags().BoolVar(&logFile, "log-file", false, "Also write logs to the state directory")
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Close()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		return 1
	}
	return 0
}
