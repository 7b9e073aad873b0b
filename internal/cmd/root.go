package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:   "sessionkit",
	Short: "Manage the signed-in session of an auth backend",
	Long: `sessionkit signs you in to an auth backend and keeps track of the session.

It restores the stored session on every run, reports who is signed in and
whether onboarding is finished, and records every login, registration,
logout and restore in a local history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which commands use for
// cancellation.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sessionkit/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output with source locations")
}
