package commands

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blueshift/inbox/internal/client"
)

// send <handle> <message>: seal a message to the handle's enc_pk and post it.
func sendCmd() *cobra.Command {
	var nickname string
	cmd := &cobra.Command{
		Use:   "send <handle> <message>",
		Short: "Encrypt and leave a message for a handle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle := args[0]
			p, err := api.Profile(cmd.Context(), handle)
			if err != nil {
				return err
			}
			raw, err := base64.StdEncoding.DecodeString(p.EncPK)
			if err != nil || len(raw) != 32 {
				return fmt.Errorf("profile %s has an invalid encryption key", handle)
			}
			var recipient [32]byte
			copy(recipient[:], raw)

			sealed, err := client.Seal([]byte(args[1]), recipient)
			if err != nil {
				return err
			}
			if err := api.PostMessage(cmd.Context(), handle, sealed, nickname); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "optional sender nickname shown in clear")
	return cmd
}
