package cli

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/gorilla/securecookie"
	"github.com/serveease/admin/internal/app/system/passwords"
	"github.com/spf13/cobra"
)

func newHashPasswordCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := passwords.Validate(args[0]); err != nil {
				return err
			}
			hash, err := passwords.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// newGenKeyCmd prints a random hex key. --csrf prints the 32-character key
// csrf_key requires.
func newGenKeyCmd(rt *runtime) *cobra.Command {
	var size int
	var forCSRF bool

	cmd := &cobra.Command{
		Use:   "gen-session-key",
		Short: "Print a random key for session_key or csrf_key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if forCSRF {
				size = 16
			}
			if size < 16 {
				return errors.New("--bytes must be at least 16")
			}
			key := securecookie.GenerateRandomKey(size)
			if key == nil {
				return errors.New("could not read random bytes")
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(key))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 32, "Random bytes before hex encoding")
	cmd.Flags().BoolVar(&forCSRF, "csrf", false, "Print a 32-character key for csrf_key")
	return cmd
}
