package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.encore.dev/statusauth"
	"go.encore.dev/statusauth/internal/config"
	"go.encore.dev/statusauth/status/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one authenticated status check",
	Long: `Sign a status request with the configured identity and key, send it to the
responder and verify the signed response.

Exit codes: 0 verified, 2 config error, 3 transport error, 4 malformed
response, 5 authentication failed (either side).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadClient(globalOpts.ConfigPath)
		if err != nil {
			return &configError{err}
		}
		key, err := cfg.AuthKey()
		if err != nil {
			return &configError{err}
		}
		logger := newLogger(cfg.LogLevel)

		sdk := statusauth.NewSDK(
			statusauth.WithHost(cfg.Host),
			statusauth.WithIdentity(cfg.Identity, key),
			statusauth.WithTimeout(cfg.Timeout),
			statusauth.WithLogger(&logger),
		)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		res, err := sdk.Status.CheckStatus(ctx)
		if err != nil {
			return err
		}

		printStatus(cmd.OutOrStdout(), res)
		return nil
	},
}

func printStatus(w io.Writer, res *types.StatusResult) {
	active := "NO"
	if res.Active {
		active = "YES"
	}
	_, _ = fmt.Fprintln(w, "Server HMAC OK.")
	_, _ = fmt.Fprintf(w, "Active: %s\n", active)
	_, _ = fmt.Fprintf(w, "Expires at (server): %s\n", res.ExpiresAt)
	_, _ = fmt.Fprintf(w, "Server time: %d\n", res.ServerTime.Unix())
}
