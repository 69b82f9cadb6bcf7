package engine

import (
	"fmt"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/domain"
)

// Side holds one player's characters in fixed positional order. Positions
// never shift; a dead character keeps its slot.
type Side struct {
	Player     domain.PlayerID
	Characters []*CharacterEntity

	// Dice is the side's pool for the current round, rerolled at every
	// round begin.
	Dice []domain.ElementType

	DeclaredEnd bool
}

// NewSide builds a side from card templates. Position is the index in the
// given order.
func NewSide(player domain.PlayerID, cards []content.CharacterCard) (*Side, error) {
	s := &Side{Player: player, Characters: make([]*CharacterEntity, 0, len(cards))}
	for i, card := range cards {
		ch, err := NewCharacter(card, player, domain.CharPos(i))
		if err != nil {
			return nil, err
		}
		s.Characters = append(s.Characters, ch)
	}
	return s, nil
}

// Character returns the character at the given position.
func (s *Side) Character(pos domain.CharPos) (*CharacterEntity, error) {
	if int(pos) < 0 || int(pos) >= len(s.Characters) {
		return nil, fmt.Errorf("position %d out of range [0,%d) for %s: %w",
			pos, len(s.Characters), s.Player, domain.ErrInvalidPosition)
	}
	return s.Characters[pos], nil
}

// ActiveCharacter returns the character currently on point, or nil when no
// character is active (before the opening switch, or after a wipe).
func (s *Side) ActiveCharacter() *CharacterEntity {
	for _, ch := range s.Characters {
		if ch.Active {
			return ch
		}
	}
	return nil
}

// Defeated reports whether every character on the side is down.
func (s *Side) Defeated() bool {
	for _, ch := range s.Characters {
		if ch.Alive {
			return false
		}
	}
	return true
}

// responded reports whether every character on the side has already
// responded to the message. Used by the resolver to retire side-scoped
// messages such as character switches.
func (s *Side) responded(m Message) bool {
	for _, ch := range s.Characters {
		if !m.Responded(ch.EntityID()) {
			return false
		}
	}
	return true
}

// Encode snapshots the whole side for observers.
func (s *Side) Encode() SideSnapshot {
	chars := make([]Snapshot, len(s.Characters))
	for i, ch := range s.Characters {
		chars[i] = ch.Encode()
	}
	dice := make([]string, len(s.Dice))
	for i, d := range s.Dice {
		dice[i] = d.String()
	}
	return SideSnapshot{
		Player:      s.Player.String(),
		Dice:        dice,
		DeclaredEnd: s.DeclaredEnd,
		Characters:  chars,
	}
}

// SideSnapshot is the serializable view of one side.
type SideSnapshot struct {
	Player      string     `json:"player"`
	Dice        []string   `json:"dice"`
	DeclaredEnd bool       `json:"declared_end"`
	Characters  []Snapshot `json:"characters"`
}
