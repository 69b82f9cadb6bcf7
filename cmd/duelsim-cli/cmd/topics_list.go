package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/duelsim/duelsim/cmd/duelsim-cli/internal/topics"
	"github.com/duelsim/duelsim/internal/topicmgr"
)

var (
	listOutputFormat string
	listModuleFilter string
	listScopeFilter  string
)

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered topics",
	Long: `List every topic registered by the application's modules and the
framework plumbing.

Examples:
  duelsim-cli topics list                  # All topics, table format
  duelsim-cli topics list --format json    # Machine-readable output
  duelsim-cli topics list --module match   # Only the match module's topics
  duelsim-cli topics list --scope framework`,
	Run: topicsListHandler,
}

func topicsListHandler(cmd *cobra.Command, args []string) {
	if err := topics.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize topics: %v\n", err)
		os.Exit(1)
	}

	manager := topicmgr.Default()
	topicList := manager.List()

	if listModuleFilter != "" {
		topicList = manager.ListByModule(listModuleFilter)
	}
	if listScopeFilter != "" {
		scope := parseScope(listScopeFilter)
		if scope == "" {
			fmt.Fprintf(os.Stderr, "Error: invalid scope '%s'. Valid scopes: framework, module\n", listScopeFilter)
			os.Exit(1)
		}
		filtered := topicList[:0]
		for _, topic := range topicList {
			if topic.Scope() == scope {
				filtered = append(filtered, topic)
			}
		}
		topicList = filtered
	}

	if len(topicList) == 0 {
		message := "No topics found"
		var filters []string
		if listModuleFilter != "" {
			filters = append(filters, fmt.Sprintf("module '%s'", listModuleFilter))
		}
		if listScopeFilter != "" {
			filters = append(filters, fmt.Sprintf("scope '%s'", listScopeFilter))
		}
		if len(filters) > 0 {
			message += " matching: " + strings.Join(filters, ", ")
		}
		fmt.Println(message)
		return
	}

	switch listOutputFormat {
	case "json":
		if err := topics.DisplayTopicsJSON(topicList); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to encode JSON: %v\n", err)
			os.Exit(1)
		}
	case "table":
		topics.DisplayTopicsTable(topicList)
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported output format '%s'. Use 'table' or 'json'\n", listOutputFormat)
		os.Exit(1)
	}
}

func parseScope(scopeStr string) topicmgr.TopicScope {
	switch strings.ToLower(scopeStr) {
	case "framework":
		return topicmgr.ScopeFramework
	case "module":
		return topicmgr.ScopeModule
	default:
		return ""
	}
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)

	topicsListCmd.Flags().StringVarP(&listOutputFormat, "format", "f", "table", "Output format (table, json)")
	topicsListCmd.Flags().StringVarP(&listModuleFilter, "module", "m", "", "Filter topics by module name")
	topicsListCmd.Flags().StringVarP(&listScopeFilter, "scope", "s", "", "Filter topics by scope (framework, module)")
}
