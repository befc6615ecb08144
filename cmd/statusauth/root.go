package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "unknown"
	commit  = "none"
	date    = "unknown"
)

// GlobalOptions holds the global configuration flags
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
}

var globalOpts = &GlobalOptions{}

var rootCmd = &cobra.Command{
	Use:   "statusauth",
	Short: "Mutually authenticated subscription status checks",
	Long: `statusauth: HMAC-SHA512 authenticated status checks.

The client signs each request with a key it shares with the responder, and
verifies the responder's signed answer before trusting it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand, show help
		_ = cmd.Help()
	},
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&globalOpts.ConfigPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&globalOpts.LogLevel, "log-level", "", "Log level (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(deriveKeyCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the console logger used by every subcommand.
func newLogger(configured string) zerolog.Logger {
	level := configured
	if globalOpts.LogLevel != "" {
		level = globalOpts.LogLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}
