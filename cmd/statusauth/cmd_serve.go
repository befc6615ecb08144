package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"go.encore.dev/statusauth/internal/config"
	"go.encore.dev/statusauth/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the status responder",
	Long: `Serve signed status responses on POST /check_status until interrupted.

Keys come either from a YAML key file (key_file) or are derived per identity
from a master key (derive.master_key_hex).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer(globalOpts.ConfigPath)
		if err != nil {
			return &configError{err}
		}
		logger := newLogger(cfg.LogLevel)

		deps, err := server.BuildDeps(cmd.Context(), cfg, clock.New(), &logger)
		if err != nil {
			return &configError{err}
		}
		srv, err := server.New(cfg, deps)
		if err != nil {
			return err
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("shutting down")

		return srv.Close()
	},
}
