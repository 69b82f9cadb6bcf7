package cmd

import (
	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Explore the registered bus topics",
	Long: `The topics command discovers and inspects the bus topics the
application's modules publish and subscribe to.

Available subcommands:
  list      List all registered topics with optional filtering
  get       Get detailed information about a specific topic
  validate  Check a topic name and its registration

Examples:
  # List all topics
  duelsim-cli topics list

  # List topics for a specific module
  duelsim-cli topics list --module=match

  # Get detailed information about a topic
  duelsim-cli topics get match.state.updated

  # Validate a topic name
  duelsim-cli topics validate match.action.use_skill`,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
