package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"go.encore.dev/statusauth/internal/config"
	"go.encore.dev/statusauth/internal/keystore"
)

var deriveIdentity string

var deriveKeyCmd = &cobra.Command{
	Use:   "derive-key",
	Short: "Print the derived shared key for an identity",
	Long: `Print, as hex, the key a responder configured with derive.master_key_hex
will expect from the given identity. Hand it to the client as key_hex.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer(globalOpts.ConfigPath)
		if err != nil {
			return &configError{err}
		}
		master, err := cfg.MasterKey()
		if err != nil {
			return &configError{err}
		}

		derived, err := keystore.NewDerived(master, []byte(cfg.Derive.Salt))
		if err != nil {
			return &configError{err}
		}
		key, err := derived.DeriveKey(deriveIdentity)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(key.Data))
		return nil
	},
}

func init() {
	deriveKeyCmd.Flags().StringVar(&deriveIdentity, "identity", "", "Identity to derive the key for")
	_ = deriveKeyCmd.MarkFlagRequired("identity")
}
