package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "navkit",
		Short: "Client-side navigation controller for Go web applications",
		Long: `Navkit keeps an in-memory location state synchronized with browser
history over a thin WebSocket client.

It exposes push/replace/back/forward/refresh navigation, subscriber
notifications for every location change, debounced duplicate-trigger
handling, and optional view-transition batching.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		demoCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
