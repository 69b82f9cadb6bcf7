package topics

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/duelsim/duelsim/internal/topicmgr"
)

// TopicDisplay is the JSON shape of a topic in CLI output.
type TopicDisplay struct {
	Name        string                 `json:"name"`
	Scope       string                 `json:"scope"`
	Module      string                 `json:"module"`
	Description string                 `json:"description"`
	Pattern     string                 `json:"pattern"`
	Example     string                 `json:"example"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

func toDisplay(topic topicmgr.Topic) TopicDisplay {
	return TopicDisplay{
		Name:        topic.Name(),
		Scope:       string(topic.Scope()),
		Module:      topic.Module(),
		Description: topic.Description(),
		Pattern:     topic.Pattern(),
		Example:     topic.Example(),
		Metadata:    topic.Metadata(),
	}
}

// DisplayTopicsTable prints topics as an aligned table.
func DisplayTopicsTable(topics []topicmgr.Topic) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tSCOPE\tMODULE\tDESCRIPTION")
	fmt.Fprintln(w, "----\t-----\t------\t-----------")

	for _, topic := range topics {
		module := topic.Module()
		if module == "" {
			module = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			topic.Name(),
			topic.Scope(),
			module,
			truncate(topic.Description(), 50))
	}
}

// DisplayTopicsJSON prints topics as indented JSON with a count.
func DisplayTopicsJSON(topics []topicmgr.Topic) error {
	displays := make([]TopicDisplay, len(topics))
	for i, topic := range topics {
		displays[i] = toDisplay(topic)
	}

	output := struct {
		Topics []TopicDisplay `json:"topics"`
		Count  int            `json:"count"`
	}{
		Topics: displays,
		Count:  len(displays),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// DisplayTopicDetails prints everything known about one topic.
func DisplayTopicDetails(topic topicmgr.Topic, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(toDisplay(topic))
	}

	fmt.Printf("Name:        %s\n", topic.Name())
	fmt.Printf("Scope:       %s\n", topic.Scope())
	fmt.Printf("Module:      %s\n", topic.Module())
	fmt.Printf("Description: %s\n", topic.Description())
	fmt.Printf("Pattern:     %s\n", topic.Pattern())
	if topic.Example() != "" {
		fmt.Printf("Example:     %s\n", topic.Example())
	}

	metadata := topic.Metadata()
	if len(metadata) > 0 {
		fmt.Printf("Metadata:\n")
		for k, v := range metadata {
			fmt.Printf("  %s: %v\n", k, v)
		}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
