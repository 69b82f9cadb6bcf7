package content

import (
	"fmt"
	"sort"
	"sync"

	"github.com/duelsim/duelsim/internal/domain"
)

// Registry holds the loaded character cards, keyed by name and by numeric
// id. It is populated once during startup and read-only afterwards; the
// RWMutex exists for the codex endpoints and live reloads, not for match
// resolution, which never writes here.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]CharacterCard
	byID   map[int]CharacterCard
}

// NewRegistry creates an empty card registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]CharacterCard),
		byID:   make(map[int]CharacterCard),
	}
}

// Put stores a card, replacing any previous card with the same name or id.
func (r *Registry) Put(card CharacterCard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[card.Name] = card
	r.byID[card.ID] = card
}

// Card returns a deep copy of the card with the given name. A missing name
// is a content authoring error and surfaces as domain.ErrUnknownCard.
func (r *Registry) Card(name string) (CharacterCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.byName[name]
	if !ok {
		return CharacterCard{}, fmt.Errorf("card %q: %w", name, domain.ErrUnknownCard)
	}
	return card.Clone(), nil
}

// CardByID returns a deep copy of the card with the given numeric id.
func (r *Registry) CardByID(id int) (CharacterCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.byID[id]
	if !ok {
		return CharacterCard{}, fmt.Errorf("card id %d: %w", id, domain.ErrUnknownCard)
	}
	return card.Clone(), nil
}

// ID resolves a card name to its stable numeric id.
func (r *Registry) ID(name string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("card %q: %w", name, domain.ErrUnknownCard)
	}
	return card.ID, nil
}

// Names returns the sorted names of all registered cards.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered cards.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
