package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"reflect"
	"strings"

	"github.com/duelsim/duelsim/internal/topicmgr"
)

// Event[T] wraps a topic name and provides type-safe publishing. It also
// registers the topic with the default topic manager at definition time,
// so every Event declared at package level shows up in topic listings.
type Event[T any] struct {
	topicName string
	config    topicmgr.TopicConfig
}

// NewEvent creates a typed event and auto-registers it. The payload
// struct's json tags become the topic's documented fields.
func NewEvent[T any](name string, description string) Event[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	fields := make([]string, 0)
	typeName := ""
	if t != nil && t.Kind() == reflect.Struct {
		typeName = t.Name()
		for i := 0; i < t.NumField(); i++ {
			jsonTag := t.Field(i).Tag.Get("json")
			if jsonTag == "" || jsonTag == "-" {
				continue
			}
			if comma := strings.Index(jsonTag, ","); comma >= 0 {
				jsonTag = jsonTag[:comma]
			}
			fields = append(fields, jsonTag)
		}
	}

	// The first dot-separated segment names the owning module,
	// e.g. "match.damage.dealt" belongs to match.
	module := name
	if dot := strings.Index(name, "."); dot >= 0 {
		module = name[:dot]
	}

	config := topicmgr.TopicConfig{
		Name:        name,
		Module:      module,
		Description: description,
		Pattern:     name,
		Metadata: map[string]interface{}{
			"payload_fields": fields,
			"type_name":      typeName,
			"is_typed":       true,
		},
	}

	// Events are defined at package level; a bad definition should stop
	// startup, not limp along.
	topicmgr.Default().MustRegister(topicmgr.DefineModule(config))

	return Event[T]{
		topicName: name,
		config:    config,
	}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Publish sends a typed event. The compiler ensures payload matches T.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		Payload: data,
	})
}

// Subscribe listens on a typed event, decoding each payload into T before
// invoking the handler. Messages that fail to decode are logged and
// dropped rather than retried, since they will never decode.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], handler func(ctx context.Context, matchID string, payload T) error) error {
	return s.Subscribe(ctx, event.Name(), func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			slog.Error("dropping undecodable message",
				"topic", event.Name(), "error", err)
			return nil
		}
		return handler(ctx, msg.MatchID, payload)
	})
}

// PublishFor is Publish with a match identity attached, for topics scoped
// to one running match.
func PublishFor[T any](ctx context.Context, p Publisher, event Event[T], matchID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		MatchID: matchID,
		Payload: data,
	})
}
