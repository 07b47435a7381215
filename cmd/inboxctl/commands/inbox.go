package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blueshift/inbox/internal/client"
)

// inbox <handle>: prove key possession and print the decrypted messages.
func inboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inbox <handle>",
		Short: "Sign a challenge and read a handle's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := client.LoadIdentity(keysPath)
			if err != nil {
				return err
			}
			msgs, err := api.Inbox(cmd.Context(), args[0], id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(msgs) == 0 {
				fmt.Fprintln(out, "inbox is empty")
				return nil
			}
			for _, m := range msgs {
				from := "anonymous"
				if m.Nickname != nil && *m.Nickname != "" {
					from = *m.Nickname
				}
				text := "<cannot decrypt with local key>"
				if plain, err := client.Open(m.Sealed(), id.BoxSecret); err == nil {
					text = string(plain)
				}
				fmt.Fprintf(out, "[%s] %s: %s\n", m.CreatedAt, from, text)
			}
			return nil
		},
	}
}
