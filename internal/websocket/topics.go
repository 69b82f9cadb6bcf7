package websocket

import (
	"strings"

	"github.com/duelsim/duelsim/internal/topicmgr"
)

// Framework topics for the observer bridge.
var (
	// TopicObserverBroadcast fans a frame out to every observer of the
	// match named in the message's MatchID.
	TopicObserverBroadcast = topicmgr.DefineFramework(topicmgr.TopicConfig{
		Name:        "ws.observer.broadcast",
		Description: "Deliver a frame to every observer of a match",
		Pattern:     "ws.observer.broadcast",
		Metadata: map[string]interface{}{
			"routing_type": "broadcast",
			"requires":     []string{"match_id"},
		},
	})

	// TopicClientReady is published when an observer successfully attaches.
	TopicClientReady = topicmgr.DefineFramework(topicmgr.TopicConfig{
		Name:        "ws.client.ready",
		Description: "Published when an observer client attaches to a match stream",
		Pattern:     "ws.client.ready",
		Example:     `{"connectionID":"conn456","matchID":"match:abc"}`,
		Metadata: map[string]interface{}{
			"event_type":     "lifecycle",
			"payload_fields": []string{"connectionID", "matchID"},
		},
	})

	// TopicClientDisconnected is published when an observer detaches.
	TopicClientDisconnected = topicmgr.DefineFramework(topicmgr.TopicConfig{
		Name:        "ws.client.disconnected",
		Description: "Published when an observer client detaches",
		Pattern:     "ws.client.disconnected",
		Example:     `{"connectionID":"conn456","matchID":"match:abc","reason":"client_closed"}`,
		Metadata: map[string]interface{}{
			"event_type":     "lifecycle",
			"payload_fields": []string{"connectionID", "matchID", "reason"},
		},
	})
)

// RegisterTopics registers the bridge's framework topics. Idempotent so
// tests can call it repeatedly.
func RegisterTopics() error {
	return RegisterTopicsWithManager(topicmgr.Default())
}

// RegisterTopicsWithManager registers against a specific manager.
func RegisterTopicsWithManager(manager *topicmgr.Manager) error {
	topics := []topicmgr.Topic{
		TopicObserverBroadcast,
		TopicClientReady,
		TopicClientDisconnected,
	}
	for _, topic := range topics {
		if err := manager.Register(topic); err != nil {
			if strings.Contains(err.Error(), "already registered") {
				continue
			}
			return err
		}
	}
	return nil
}
