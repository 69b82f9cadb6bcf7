package websocket

import "encoding/json"

// Envelope is the frame exchanged with observer clients. Server-to-client
// frames carry match events and snapshots; client-to-server frames carry
// whitelisted actions.
type Envelope struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ClientAction is a client-to-server frame: a request to perform a named,
// whitelisted action.
type ClientAction struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEventEnvelope frames a bus event for delivery to observers.
func NewEventEnvelope(topic string, payload []byte) *Envelope {
	return &Envelope{
		Type:    "event",
		Topic:   topic,
		Payload: payload,
	}
}

// NewCommandEnvelope frames a server command, e.g. a reconnect request
// during shutdown.
func NewCommandEnvelope(name string) *Envelope {
	return &Envelope{
		Type:    "command",
		Payload: json.RawMessage(`"` + name + `"`),
	}
}

// Server command names.
const (
	CmdReconnect = "reconnect"
	CmdMatchOver = "match_over"
)
