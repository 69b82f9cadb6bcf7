package pubsub

import "github.com/duelsim/duelsim/internal/registry"

// Service locator keys for the bus. The app registers one bridge under
// both keys; modules depend only on the side they use.
var (
	PublisherKey  = registry.Key[Publisher]("pubsub.publisher")
	SubscriberKey = registry.Key[Subscriber]("pubsub.subscriber")
)
