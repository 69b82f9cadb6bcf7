package announcer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/database"
	"github.com/duelsim/duelsim/internal/module"
	"github.com/duelsim/duelsim/internal/pubsub"
	"github.com/duelsim/duelsim/internal/registry"
)

// Module watches the card table through a live query and keeps the
// in-memory catalog in sync with it. Every applied change is announced
// on the bus so other modules can react without their own live queries.
type Module struct {
	module.BaseModule

	liveQueries database.LiveQueryService
	publisher   pubsub.Publisher
	cards       *content.Registry
	loader      *content.Loader
	subID       string
}

// New creates the announcer module.
func New() *Module {
	return &Module{}
}

// Name returns the module's unique name.
func (m *Module) Name() string {
	return "announcer"
}

// Register resolves the module's dependencies. The live query service is
// optional; without a database the announcer stays idle.
func (m *Module) Register(reg *registry.Registry) error {
	m.publisher = registry.MustGet(reg, pubsub.PublisherKey)
	m.cards = registry.MustGet(reg, content.RegistryKey)
	m.loader = content.NewLoader()
	m.liveQueries, _ = registry.Get(reg, database.LiveQueryServiceKey)

	slog.Info("announcer module registered", "live", m.liveQueries != nil)
	return nil
}

// Boot starts the card table live query.
func (m *Module) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	if m.liveQueries == nil {
		slog.Info("announcer idle, no database configured")
		return nil
	}

	sub, err := m.liveQueries.SubscribeQuery(ctx, "LIVE SELECT * FROM card", nil, m.handleCardChange)
	if err != nil {
		return fmt.Errorf("subscribing to card changes: %w", err)
	}
	m.subID = sub.ID

	slog.Info("announcer watching card table", "subscription_id", m.subID)
	return nil
}

// Shutdown kills the live query.
func (m *Module) Shutdown(ctx context.Context) error {
	if m.subID == "" {
		return nil
	}
	if err := m.liveQueries.Unsubscribe(m.subID); err != nil {
		slog.Error("failed to unsubscribe from card changes", "error", err, "subscription_id", m.subID)
	}
	return nil
}

// handleCardChange applies a card table notification to the catalog and
// announces it. Rows that fail validation are skipped so a bad write in
// the database cannot poison running matches.
func (m *Module) handleCardChange(ctx context.Context, action database.LiveQueryAction, data interface{}) {
	record, err := decodeRecord(data)
	if err != nil {
		slog.Warn("unreadable card notification", "action", action, "error", err)
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)

	switch action {
	case database.ActionCreate, database.ActionUpdate:
		if err := m.loader.Validate(record.Card); err != nil {
			slog.Warn("ignoring invalid card from database",
				"slug", record.Slug, "error", err)
			return
		}
		m.cards.Put(record.Card)
		err := pubsub.Publish(ctx, m.publisher, EventCardUpserted, CardUpserted{
			Slug:      record.Slug,
			Name:      record.Card.Name,
			Element:   record.Card.Element,
			Timestamp: now,
		})
		if err != nil {
			slog.Error("failed to publish card announcement", "error", err, "slug", record.Slug)
		}
		slog.Info("card catalog updated from database", "slug", record.Slug, "card", record.Card.Name)
	case database.ActionDelete:
		// Running matches keep their copy; only the announcement goes out.
		err := pubsub.Publish(ctx, m.publisher, EventCardRemoved, CardRemoved{
			Slug:      record.Slug,
			Timestamp: now,
		})
		if err != nil {
			slog.Error("failed to publish card announcement", "error", err, "slug", record.Slug)
		}
		slog.Info("card removed from database", "slug", record.Slug)
	default:
		slog.Debug("ignoring card table action", "action", action)
	}
}

// cardRow is the shape of a card table notification.
type cardRow struct {
	Slug string                `json:"slug"`
	Card content.CharacterCard `json:"card"`
}

// decodeRecord converts the loosely typed notification payload into a
// card row by round-tripping through JSON.
func decodeRecord(data interface{}) (cardRow, error) {
	var row cardRow

	raw, err := json.Marshal(data)
	if err != nil {
		return row, fmt.Errorf("encoding notification: %w", err)
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return row, fmt.Errorf("decoding card row: %w", err)
	}
	if row.Slug == "" {
		return row, fmt.Errorf("notification has no slug")
	}
	return row, nil
}
