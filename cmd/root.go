package cmd

import (
	"fmt"
	"os"

	"HomeStatus/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "homestatus",
	Short: "HomeStatus tracks device presence and now-playing state.",
	Run: func(cmd *cobra.Command, args []string) {
		// Bare invocation runs the collector.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
