package websocket

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
)

var (
	ErrActionAlreadyExists = errors.New("action already exists in whitelist")
	ErrInvalidAction       = errors.New("action cannot be empty")
)

// ActionWhitelist is the set of action names clients may submit over a
// websocket. Anything else is dropped before it reaches the bus.
type ActionWhitelist struct {
	mu      sync.RWMutex
	allowed []string
}

// NewActionWhitelist creates a whitelist from the given action names.
func NewActionWhitelist(actions ...string) *ActionWhitelist {
	valid := make([]string, 0, len(actions))
	for _, a := range actions {
		if a != "" {
			valid = append(valid, a)
		}
	}
	return &ActionWhitelist{allowed: valid}
}

// IsAllowed reports whether an action may be submitted.
func (w *ActionWhitelist) IsAllowed(action string) bool {
	if action == "" {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Contains(w.allowed, action)
}

// AddAction adds an action name.
func (w *ActionWhitelist) AddAction(action string) error {
	if action == "" {
		return ErrInvalidAction
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if slices.Contains(w.allowed, action) {
		return ErrActionAlreadyExists
	}
	w.allowed = append(w.allowed, action)
	slog.Debug("added action to whitelist", "action", action)
	return nil
}
