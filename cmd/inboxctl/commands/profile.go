package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blueshift/inbox/internal/client"
)

func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <handle>",
		Short: "Show a handle's on-ledger profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := api.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "handle:  %s\nowner:   %s\nenc_pk:  %s\n", p.Handle, p.Owner, p.EncPK)
			for _, k := range p.Allowlist {
				fmt.Fprintf(out, "allowed: %s\n", k)
			}
			return nil
		},
	}
}

// owner [pubkey]: list handles owned by a key, defaulting to the local identity.
func ownerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owner [pubkey]",
		Short: "List the handles owned by a public key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var owner string
			if len(args) == 1 {
				owner = args[0]
			} else {
				id, err := client.LoadIdentity(keysPath)
				if err != nil {
					return err
				}
				owner = id.PublicKey()
			}
			profiles, err := api.ProfilesByOwner(cmd.Context(), owner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "no profiles")
				return nil
			}
			for _, p := range profiles {
				fmt.Fprintf(out, "%s\t%s\n", p.Handle, p.PDA)
			}
			return nil
		},
	}
}
