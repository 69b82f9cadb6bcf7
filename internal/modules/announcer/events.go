package announcer

import "github.com/duelsim/duelsim/internal/pubsub"

// CardUpserted is published when a card record appears or changes in the
// database. The in-memory catalog has already been refreshed when
// subscribers see it.
type CardUpserted struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Element   string `json:"element"`
	Timestamp string `json:"timestamp"`
}

// CardRemoved is published when a card record is deleted.
type CardRemoved struct {
	Slug      string `json:"slug"`
	Timestamp string `json:"timestamp"`
}

// Events the announcer publishes from card table live queries.
var (
	EventCardUpserted = pubsub.NewEvent[CardUpserted](
		"announcer.card.updated", "A card record was created or changed in the database")
	EventCardRemoved = pubsub.NewEvent[CardRemoved](
		"announcer.card.removed", "A card record was deleted from the database")
)
