package main

import (
	"os"

	"github.com/blueshift/inbox/cmd/inboxctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
