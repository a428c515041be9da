// Arena runs the arena progression engine as a terminal dashboard, a
// headless simulation, or a websocket server.
//
// Usage: arena [play|sim|serve|version] [flags]
package main

import (
	"os"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
