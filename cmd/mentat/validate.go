package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monadicus/mentat/pkg/cli"
	"github.com/monadicus/mentat/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file without starting the gateway.

Exits non-zero when the configuration cannot be loaded or fails validation.

Examples:
  # Validate the given config
  mentat validate --config /etc/mentat/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return cli.NewConfigError("", err.Error())
		}

		fmt.Println("✓ Configuration valid")
		fmt.Printf("  listen address:   %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  registry backend: %s\n", cfg.Registry.Backend)
		if cfg.Registry.Backend != "memory" {
			fmt.Printf("  registry path:    %s\n", cfg.Registry.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
