package engine

import (
	"fmt"
	"math/rand"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/domain"
)

// Phase is the coarse match state. RoundBegin and RoundEnd are transient:
// the driver passes through them inside a single Submit call, so callers
// observe SelectActive, Play or Finished.
type Phase int

const (
	PhaseSelectActive Phase = iota
	PhaseRoundBegin
	PhasePlay
	PhaseRoundEnd
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhaseSelectActive: "select_active",
	PhaseRoundBegin:   "round_begin",
	PhasePlay:         "play",
	PhaseRoundEnd:     "round_end",
	PhaseFinished:     "finished",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Action is a player intent submitted to the driver. Cost payment and
// legality judgment happen before submission; the driver only translates
// actions into queue messages and drains the queue.
type Action interface {
	Player() domain.PlayerID
}

// UseSkillAction has the active character fire a named skill.
type UseSkillAction struct {
	Side      domain.PlayerID
	SkillName string
	Targets   []domain.Target
}

func (a UseSkillAction) Player() domain.PlayerID { return a.Side }

// ChangeCharacterAction switches the side's active character. During
// SelectActive it doubles as the opening pick.
type ChangeCharacterAction struct {
	Side     domain.PlayerID
	Position domain.CharPos
}

func (a ChangeCharacterAction) Player() domain.PlayerID { return a.Side }

// DeclareEndAction ends the side's participation in the round.
type DeclareEndAction struct {
	Side domain.PlayerID
}

func (a DeclareEndAction) Player() domain.PlayerID { return a.Side }

// Game is the turn controller over two sides, a queue and a resolver.
// Not safe for concurrent use; the match module serializes access.
type Game struct {
	sides    map[domain.PlayerID]*Side
	queue    *Queue
	resolver *Resolver
	rng      *rand.Rand

	round  int
	phase  Phase
	winner domain.PlayerID
}

// NewGame sets up a match from two card lists. The seed fixes every
// random decision the driver will ever take, so the same seed and action
// sequence replay identically.
func NewGame(seed int64, one, two []content.CharacterCard) (*Game, error) {
	sideOne, err := NewSide(domain.Player1, one)
	if err != nil {
		return nil, err
	}
	sideTwo, err := NewSide(domain.Player2, two)
	if err != nil {
		return nil, err
	}

	return &Game{
		sides: map[domain.PlayerID]*Side{
			domain.Player1: sideOne,
			domain.Player2: sideTwo,
		},
		queue:    NewQueue(),
		resolver: NewResolver(sideOne, sideTwo),
		rng:      rand.New(rand.NewSource(seed)),
		round:    1,
		phase:    PhaseSelectActive,
		winner:   domain.PlayerNone,
	}, nil
}

// Side exposes one player's arena.
func (g *Game) Side(p domain.PlayerID) (*Side, error) {
	side, ok := g.sides[p]
	if !ok {
		return nil, fmt.Errorf("no side for %s: %w", p, domain.ErrNotFound)
	}
	return side, nil
}

// Phase returns the current coarse phase.
func (g *Game) Phase() Phase { return g.phase }

// Round returns the current round number, starting at 1.
func (g *Game) Round() int { return g.round }

// Winner returns the winning player, or PlayerNone while the match runs.
func (g *Game) Winner() domain.PlayerID { return g.winner }

// Submit routes one action into the queue, resolves to a fixed point and
// advances the phase machine. Returned errors are either data errors from
// the action or a stalled resolution; either way the caller decides
// whether to abandon the match.
func (g *Game) Submit(action Action) error {
	if g.phase == PhaseFinished {
		return domain.ErrMatchFinished
	}

	side, err := g.Side(action.Player())
	if err != nil {
		return err
	}

	switch a := action.(type) {
	case ChangeCharacterAction:
		if _, err := side.Character(a.Position); err != nil {
			return err
		}
		g.queue.Push(NewChangeCharacterMessage(a.Side, domain.Target{
			Player:   a.Side,
			Position: a.Position,
		}))

	case UseSkillAction:
		if g.phase != PhasePlay {
			return fmt.Errorf("skill use outside the play phase (in %s)", g.phase)
		}
		active := side.ActiveCharacter()
		if active == nil {
			return fmt.Errorf("%s has no active character: %w", a.Side, domain.ErrInvalidPosition)
		}
		if _, err := active.SkillByName(a.SkillName); err != nil {
			return err
		}
		targets := a.Targets
		if len(targets) == 0 {
			targets = g.defaultTargets(a.Side)
		}
		g.queue.Push(NewUseSkillMessage(a.Side, active.Position, a.SkillName, targets))

	case DeclareEndAction:
		if g.phase != PhasePlay {
			return fmt.Errorf("declare end outside the play phase (in %s)", g.phase)
		}
		side.DeclaredEnd = true
		g.queue.Push(NewDeclareEndMessage(a.Side))

	default:
		return fmt.Errorf("unhandled action %T", action)
	}

	if err := g.resolver.Resolve(g.queue); err != nil {
		return err
	}
	return g.advance()
}

// defaultTargets aims at the opponent's active character, matching the
// original single-target skill behaviour when no explicit targets come
// with the action.
func (g *Game) defaultTargets(attacker domain.PlayerID) []domain.Target {
	enemy := g.sides[attacker.Opponent()]
	active := enemy.ActiveCharacter()
	if active == nil {
		return nil
	}
	return []domain.Target{{Player: enemy.Player, Position: active.Position}}
}

// advance runs the phase machine after a resolution settles.
func (g *Game) advance() error {
	if winner, over := g.checkDefeat(); over {
		g.phase = PhaseFinished
		g.winner = winner
		return nil
	}

	switch g.phase {
	case PhaseSelectActive:
		for _, side := range g.sides {
			if side.ActiveCharacter() == nil {
				return nil
			}
		}
		g.phase = PhaseRoundBegin
		return g.beginRound()

	case PhasePlay:
		for _, side := range g.sides {
			if !side.DeclaredEnd {
				return nil
			}
		}
		g.phase = PhaseRoundEnd
		return g.endRound()
	}
	return nil
}

// Each side rolls eight dice at every round begin.
const dicePerRoll = 8

var rollableElements = []domain.ElementType{
	domain.ElementOmni,
	domain.ElementPyro,
	domain.ElementHydro,
	domain.ElementElectro,
	domain.ElementCryo,
	domain.ElementAnemo,
	domain.ElementGeo,
	domain.ElementDendro,
}

// rollDice replaces both dice pools. Sides roll in player order, so a
// fixed seed always deals the same pools.
func (g *Game) rollDice() {
	for _, p := range []domain.PlayerID{domain.Player1, domain.Player2} {
		side := g.sides[p]
		side.Dice = side.Dice[:0]
		for i := 0; i < dicePerRoll; i++ {
			side.Dice = append(side.Dice, rollableElements[g.rng.Intn(len(rollableElements))])
		}
	}
}

// beginRound rolls dice, announces the round and settles into play.
func (g *Game) beginRound() error {
	g.rollDice()
	g.queue.Push(NewRoundBeginMessage(g.round))
	if err := g.resolver.Resolve(g.queue); err != nil {
		return err
	}
	g.phase = PhasePlay
	return nil
}

// endRound announces the round end, then rolls straight into the next
// round's begin.
func (g *Game) endRound() error {
	g.queue.Push(NewRoundEndMessage(g.round))
	if err := g.resolver.Resolve(g.queue); err != nil {
		return err
	}
	g.round++
	for _, side := range g.sides {
		side.DeclaredEnd = false
	}
	g.phase = PhaseRoundBegin
	return g.beginRound()
}

// checkDefeat reports the winner once a side is wiped. A double wipe in
// the same resolution counts for the side that still stands first in
// player order, which cannot happen with clamped damage but keeps the
// check total.
func (g *Game) checkDefeat() (domain.PlayerID, bool) {
	for _, p := range []domain.PlayerID{domain.Player1, domain.Player2} {
		if g.sides[p].Defeated() {
			return p.Opponent(), true
		}
	}
	return domain.PlayerNone, false
}

// GameSnapshot is the serializable view of the full match for observers.
type GameSnapshot struct {
	Round  int            `json:"round"`
	Phase  string         `json:"phase"`
	Winner string         `json:"winner"`
	Sides  []SideSnapshot `json:"sides"`
}

// Encode snapshots the whole game in player order.
func (g *Game) Encode() GameSnapshot {
	return GameSnapshot{
		Round:  g.round,
		Phase:  g.phase.String(),
		Winner: g.winner.String(),
		Sides: []SideSnapshot{
			g.sides[domain.Player1].Encode(),
			g.sides[domain.Player2].Encode(),
		},
	}
}
