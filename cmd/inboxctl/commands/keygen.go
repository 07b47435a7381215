package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blueshift/inbox/internal/client"
)

func keygenCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a signing key and a box encryption key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.LoadIdentity(keysPath); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to replace it", keysPath)
			} else if err != nil && !errors.Is(err, client.ErrNoIdentity) && !force {
				return err
			}
			id, err := client.GenerateIdentity()
			if err != nil {
				return err
			}
			if err := id.Save(keysPath); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Identity written to %s\n", keysPath)
			fmt.Fprintf(out, "Public key: %s\n", id.PublicKey())
			fmt.Fprintf(out, "Encryption key (enc_pk): %s\n", id.EncryptionKey())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key file")
	return cmd
}
