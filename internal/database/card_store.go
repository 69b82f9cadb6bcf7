package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/duelsim/duelsim/internal/content"
)

const cardTable = "card"

// CardRecord is a character card as stored in the database, wrapping the
// authored template with record bookkeeping.
type CardRecord struct {
	ID        *surrealmodels.RecordID       `json:"id,omitempty"`
	Slug      string                        `json:"slug"`
	Card      content.CharacterCard         `json:"card"`
	CreatedAt *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
	UpdatedAt *surrealmodels.CustomDateTime `json:"updated_at,omitempty"`
}

// CardStore persists character cards. The announcer watches the card table
// for changes, so every write here fans out to live subscribers.
type CardStore struct {
	client Client[CardRecord]
}

// NewCardStore creates a card store over the given client.
func NewCardStore(client Client[CardRecord]) *CardStore {
	return &CardStore{client: client}
}

// Upsert stores a card under its slug, replacing any previous version.
func (s *CardStore) Upsert(ctx context.Context, slug string, card content.CharacterCard) (*CardRecord, error) {
	if slug == "" {
		return nil, errors.New("card slug is required")
	}

	now := &surrealmodels.CustomDateTime{Time: time.Now().UTC()}

	existing, err := s.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		data := map[string]interface{}{
			"card":       card,
			"updated_at": now,
		}
		return s.client.Update(ctx, existing.ID.String(), data)
	}

	data := map[string]interface{}{
		"slug":       slug,
		"card":       card,
		"created_at": now,
		"updated_at": now,
	}
	record, err := s.client.Create(ctx, cardTable, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store card %q: %w", slug, err)
	}
	return record, nil
}

// FindBySlug retrieves a card by its slug. Returns ErrNotFound when the
// card does not exist.
func (s *CardStore) FindBySlug(ctx context.Context, slug string) (*CardRecord, error) {
	query := "SELECT * FROM card WHERE slug = $slug"
	record, err := s.client.QueryOne(ctx, query, map[string]any{"slug": slug})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, NewDBError(ErrNotFound, fmt.Sprintf("card %q not found", slug))
	}
	return record, nil
}

// FindByElement lists cards of one element, ordered by name.
func (s *CardStore) FindByElement(ctx context.Context, element string) ([]CardRecord, error) {
	query := "SELECT * FROM card WHERE card.element = $element ORDER BY card.name"
	return s.client.Query(ctx, query, map[string]any{"element": element})
}

// List returns all stored cards ordered by name.
func (s *CardStore) List(ctx context.Context) ([]CardRecord, error) {
	return s.client.Query(ctx, "SELECT * FROM card ORDER BY card.name", nil)
}

// DeleteBySlug removes a card by its slug. Missing cards are not an error.
func (s *CardStore) DeleteBySlug(ctx context.Context, slug string) error {
	record, err := s.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return s.client.Delete(ctx, record.ID.String())
}
