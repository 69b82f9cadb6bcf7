package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/duelsim/duelsim/cmd/duelsim-cli/internal/topics"
	"github.com/duelsim/duelsim/internal/topicmgr"
)

var getOutputFormat string

var topicsGetCmd = &cobra.Command{
	Use:   "get <topic-name>",
	Short: "Get detailed information about a specific topic",
	Long: `Show everything registered for one topic: scope, owning module,
description, pattern, example payload and metadata.

Examples:
  duelsim-cli topics get match.state.updated
  duelsim-cli topics get ws.observer.broadcast --format json`,
	Args: cobra.ExactArgs(1),
	Run:  topicsGetHandler,
}

func topicsGetHandler(cmd *cobra.Command, args []string) {
	topicName := args[0]

	if err := topics.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize topics: %v\n", err)
		os.Exit(1)
	}

	topic, found := topicmgr.Default().Get(topicName)
	if !found {
		fmt.Fprintf(os.Stderr, "Error: topic '%s' not found\n", topicName)
		fmt.Fprintf(os.Stderr, "\nUse 'duelsim-cli topics list' to see all available topics.\n")
		os.Exit(1)
	}

	if err := topics.DisplayTopicDetails(topic, getOutputFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to display topic details: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	topicsCmd.AddCommand(topicsGetCmd)

	topicsGetCmd.Flags().StringVarP(&getOutputFormat, "format", "f", "table", "Output format (table, json)")
}
