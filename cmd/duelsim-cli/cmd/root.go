package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "duelsim-cli",
	Short: "Duelsim developer tooling",
	Long: `Duelsim CLI is a command-line companion for the duelsim engine.

Available commands:
  simulate    Run a headless match and print the round log
  cards       Inspect and validate character cards
  topics      Explore the registered bus topics

Use "duelsim-cli [command] --help" for more information about a command.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
