package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "spur",
	Short: "Spur - single-tenant relay with a runtime-configurable upstream",
	Long: `Spur is a small reverse proxy for exactly one upstream at a time.

An admin API sets and rotates the upstream target while the process runs;
everything under the proxy prefix is relayed to it verbatim. Admin access
is gated by a bearer credential provisioned from the environment, a
settings file, or a one-shot setup endpoint, depending on the mode.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
