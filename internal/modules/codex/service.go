package codex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/database"
	"github.com/duelsim/duelsim/internal/registry"
	"github.com/duelsim/duelsim/internal/script"
)

// ServiceKey locates the codex service in the service registry.
var ServiceKey = registry.Key[*Service]("codex.service")

// Service is the card catalog: lookups over the loaded card set, full
// validation for authored cards, and an optional persistent mirror that
// the announcer watches for changes.
type Service struct {
	cards   *content.Registry
	loader  *content.Loader
	scripts *script.Engine      // optional, enables DSL checks
	store   *database.CardStore // optional, enables persistence
}

// Dependencies holds what the codex service needs.
type Dependencies struct {
	Cards   *content.Registry
	Scripts *script.Engine
	Store   *database.CardStore
}

// NewService creates the codex service.
func NewService(deps Dependencies) *Service {
	return &Service{
		cards:   deps.Cards,
		loader:  content.NewLoader(),
		scripts: deps.Scripts,
		store:   deps.Store,
	}
}

// Summary is the listing view of one card.
type Summary struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Element     string `json:"element"`
	WeaponType  string `json:"weapon"`
	HealthPoint int    `json:"health_point"`
	Skills      int    `json:"skills"`
}

// List summarizes every loaded card, in registry name order.
func (s *Service) List() []Summary {
	names := s.cards.Names()
	out := make([]Summary, 0, len(names))
	for _, name := range names {
		card, err := s.cards.Card(name)
		if err != nil {
			continue
		}
		out = append(out, Summary{
			Slug:        Slugify(card.Name),
			Name:        card.Name,
			Element:     card.Element,
			WeaponType:  card.WeaponType,
			HealthPoint: card.HealthPoint,
			Skills:      len(card.Skills),
		})
	}
	return out
}

// Get returns the full card template by name.
func (s *Service) Get(name string) (content.CharacterCard, error) {
	return s.cards.Card(name)
}

// Validate runs the full authoring check on a card: structural and
// semantic validation, then a compile check of each skill's DSL
// descriptors when the script engine is available.
func (s *Service) Validate(card content.CharacterCard) error {
	if err := s.loader.Validate(card); err != nil {
		return err
	}
	if s.scripts == nil {
		return nil
	}

	for _, skill := range card.Skills {
		for field, source := range map[string]string{
			"requirements": skill.Requirements,
			"targets":      skill.Targets,
			"effects":      skill.Effects,
		} {
			if source == "" {
				continue
			}
			name := fmt.Sprintf("%s.%s.%s", Slugify(card.Name), Slugify(skill.Name), field)
			if err := s.scripts.ValidateSource("codex", name, source); err != nil {
				return fmt.Errorf("skill %q %s descriptor: %w", skill.Name, field, err)
			}
		}
	}
	return nil
}

// SyncToStore mirrors the loaded card set into the database, one upsert
// per card. A no-op without a configured store.
func (s *Service) SyncToStore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	for _, name := range s.cards.Names() {
		card, err := s.cards.Card(name)
		if err != nil {
			return err
		}
		if _, err := s.store.Upsert(ctx, Slugify(card.Name), card); err != nil {
			return fmt.Errorf("syncing card %q: %w", card.Name, err)
		}
	}

	slog.Info("card set mirrored to database", "cards", s.cards.Len())
	return nil
}

// Slugify turns a card or skill name into its catalog slug, e.g.
// "Favonius Bladework - Maid" becomes "favonius-bladework-maid".
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
