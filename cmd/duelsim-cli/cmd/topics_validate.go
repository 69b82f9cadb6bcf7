package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/duelsim/duelsim/cmd/duelsim-cli/internal/topics"
	"github.com/duelsim/duelsim/internal/topicmgr"
)

var topicsValidateCmd = &cobra.Command{
	Use:   "validate <topic-name>",
	Short: "Check a topic name and its registration",
	Long: `Check that a topic name follows the naming conventions (lowercase
dot-separated segments, no reserved prefixes) and that the topic is
actually registered.

Examples:
  duelsim-cli topics validate match.state.updated
  duelsim-cli topics validate Invalid.Topic    # shows the name format error`,
	Args: cobra.ExactArgs(1),
	Run:  topicsValidateHandler,
}

func topicsValidateHandler(cmd *cobra.Command, args []string) {
	topicName := args[0]

	if err := topics.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize topics: %v\n", err)
		os.Exit(1)
	}

	if err := topicmgr.ValidateName(topicName); err != nil {
		fmt.Printf("FAIL  topic name is invalid: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nTopic names look like module.subject.action, e.g. match.state.updated\n")
		os.Exit(1)
	}

	topic, found := topicmgr.Default().Get(topicName)
	if !found {
		fmt.Printf("FAIL  topic '%s' is well-formed but not registered\n", topicName)
		fmt.Fprintf(os.Stderr, "\nUse 'duelsim-cli topics list' to see all available topics.\n")
		os.Exit(1)
	}

	fmt.Printf("OK    topic '%s' is valid\n", topic.Name())
	fmt.Printf("      Scope: %s\n", topic.Scope())
	if topic.Module() != "" {
		fmt.Printf("      Module: %s\n", topic.Module())
	} else {
		fmt.Printf("      Module: (framework)\n")
	}
	fmt.Printf("      Description: %s\n", topic.Description())
}

func init() {
	topicsCmd.AddCommand(topicsValidateCmd)
}
