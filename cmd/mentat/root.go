package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mentat",
	Short: "Mentat - Rosetta endpoint gateway",
	Long: `Mentat is a gateway for Rosetta blockchain nodes.

It keeps a durable registry of Rosetta API endpoints, validates candidates
with a conformance probe before admitting them, and reverse-proxies requests
to registered endpoints by identifier.`,
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
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when omitted)")
}
