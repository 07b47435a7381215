package commands

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/blueshift/inbox/internal/client"
)

var (
	apiURL   string
	keysPath string
	timeout  time.Duration

	api *client.HTTPClient
)

// Execute runs the inboxctl command tree.
func Execute() error {
	return newRoot().Execute()
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "inboxctl",
		Short:        "Send and read end-to-end encrypted Blueshift inbox messages",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if keysPath == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				keysPath = filepath.Join(dir, ".blueshift-inbox", "keys.json")
			}
			api = client.NewHTTP(apiURL)
			api.HTTP = &http.Client{Timeout: timeout}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&apiURL, "api", envOr("INBOX_API", "http://127.0.0.1:8080/api/v1"), "inbox API base URL")
	root.PersistentFlags().StringVar(&keysPath, "keys", "", "key file (default ~/.blueshift-inbox/keys.json)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "request timeout")

	root.AddCommand(keygenCmd(), profileCmd(), ownerCmd(), sendCmd(), inboxCmd())
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
