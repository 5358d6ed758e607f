// Command passctl issues or fetches a pass directly against the provider,
// using the same configuration and client as the server.
package main

import (
	"os"

	"passgate/internal/platform/config"
)

func main() {
	root := newRootCmd(&app{
		out:        os.Stdout,
		errOut:     os.Stderr,
		loadConfig: config.FromEnv,
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
