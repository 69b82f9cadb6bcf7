package match

import (
	"github.com/duelsim/duelsim/internal/domain"
	"github.com/duelsim/duelsim/internal/engine"
	"github.com/duelsim/duelsim/internal/pubsub"
)

// Created is published when a match is opened and seated.
type Created struct {
	MatchID string   `json:"match_id"`
	Seed    int64    `json:"seed"`
	DeckOne []string `json:"deck_one"`
	DeckTwo []string `json:"deck_two"`
}

// StateUpdated carries the full observer snapshot after every accepted
// action. Observers rebuild their view from it rather than diffing.
type StateUpdated struct {
	MatchID  string              `json:"match_id"`
	Snapshot engine.GameSnapshot `json:"snapshot"`
}

// Finished is published once when a match reaches its end.
type Finished struct {
	MatchID string `json:"match_id"`
	Winner  string `json:"winner"`
	Rounds  int    `json:"rounds"`
}

// ActionRejected reports an action the engine refused, with the reason.
type ActionRejected struct {
	MatchID string `json:"match_id"`
	Player  string `json:"player"`
	Action  string `json:"action"`
	Reason  string `json:"reason"`
}

// UseSkillPayload is the client frame for firing a skill.
type UseSkillPayload struct {
	Player  string          `json:"player" validate:"required,oneof=player1 player2"`
	Skill   string          `json:"skill" validate:"required"`
	Targets []domain.Target `json:"targets,omitempty"`
}

// SwitchPayload is the client frame for switching the active character.
// During the opening phase it doubles as the starting pick.
type SwitchPayload struct {
	Player   string `json:"player" validate:"required,oneof=player1 player2"`
	Position int    `json:"position" validate:"gte=0"`
}

// DeclareEndPayload is the client frame for ending the round.
type DeclareEndPayload struct {
	Player string `json:"player" validate:"required,oneof=player1 player2"`
}

// Events the match module publishes.
var (
	EventCreated = pubsub.NewEvent[Created](
		"match.created", "A match has been opened and both decks seated")
	EventStateUpdated = pubsub.NewEvent[StateUpdated](
		"match.state.updated", "Full match snapshot after an accepted action")
	EventFinished = pubsub.NewEvent[Finished](
		"match.finished", "A match has ended with a winner or a draw")
	EventActionRejected = pubsub.NewEvent[ActionRejected](
		"match.action.rejected", "An action was refused by the rules engine")
)

// Actions clients submit over the observer bridge.
var (
	ActionUseSkill = pubsub.NewEvent[UseSkillPayload](
		"match.action.use_skill", "Client request to fire the active character's skill")
	ActionSwitch = pubsub.NewEvent[SwitchPayload](
		"match.action.switch_character", "Client request to switch the active character")
	ActionDeclareEnd = pubsub.NewEvent[DeclareEndPayload](
		"match.action.declare_end", "Client request to end the round for one side")
)
