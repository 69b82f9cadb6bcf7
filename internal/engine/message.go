package engine

import (
	"github.com/google/uuid"

	"github.com/duelsim/duelsim/internal/domain"
)

// Priority orders messages on the resolution queue. Lower values resolve
// first; ties fall back to insertion order.
type Priority int

const (
	PriorityImmediate    Priority = 10 // board mutations (summons, statuses)
	PriorityPayCost      Priority = 20 // cost calculation before the action lands
	PriorityPlayerAction Priority = 30 // use-skill, change-character, declare-end
	PriorityEffect       Priority = 40 // damage, healing
	PriorityReaction     Priority = 50 // elemental reaction follow-ups
	PriorityHPChanged    Priority = 60 // death notifications
	PriorityGameStatus   Priority = 70 // round begin/end
)

// Message is one atomic happening waiting to be resolved. Every variant
// embeds BaseMessage; the set of variants is closed and the character
// dispatch switches over all of them.
type Message interface {
	// Kind is a stable name for logging and error reporting.
	Kind() string

	// Priority returns the queue ordering key.
	Priority() Priority

	// Sender identifies the seat that caused this message.
	Sender() domain.PlayerID

	// Responded reports whether the entity already reacted to this exact
	// message instance.
	Responded(id uuid.UUID) bool

	// MarkResponded records that the entity reacted to this instance.
	MarkResponded(id uuid.UUID)

	// RespondedCount returns how many distinct entities have responded.
	RespondedCount() int

	// ConsumeOnQuiet reports whether the resolver may discard this message
	// after a full pass with no updates. Only notification kinds opt in;
	// everything else surviving a quiet pass is a stall.
	ConsumeOnQuiet() bool
}

// BaseMessage carries the fields every message shares. The responded set
// belongs to the message instance: two messages with identical payloads
// still track their respondents independently.
type BaseMessage struct {
	priority  Priority
	sender    domain.PlayerID
	responded map[uuid.UUID]bool
}

func newBaseMessage(priority Priority, sender domain.PlayerID) BaseMessage {
	return BaseMessage{
		priority:  priority,
		sender:    sender,
		responded: make(map[uuid.UUID]bool),
	}
}

func (m *BaseMessage) Priority() Priority      { return m.priority }
func (m *BaseMessage) Sender() domain.PlayerID { return m.sender }
func (m *BaseMessage) Responded(id uuid.UUID) bool {
	return m.responded[id]
}
func (m *BaseMessage) MarkResponded(id uuid.UUID) {
	m.responded[id] = true
}
func (m *BaseMessage) RespondedCount() int  { return len(m.responded) }
func (m *BaseMessage) ConsumeOnQuiet() bool { return false }

// UseSkillMessage asks the character at UserPosition on the sender's side
// to use one of its skills. Only that character may consume it.
type UseSkillMessage struct {
	BaseMessage
	UserPosition domain.CharPos
	SkillName    string
	Targets      []domain.Target
}

// NewUseSkillMessage builds a use-skill message with resolved targets.
func NewUseSkillMessage(sender domain.PlayerID, userPos domain.CharPos, skillName string, targets []domain.Target) *UseSkillMessage {
	return &UseSkillMessage{
		BaseMessage:  newBaseMessage(PriorityPlayerAction, sender),
		UserPosition: userPos,
		SkillName:    skillName,
		Targets:      targets,
	}
}

func (m *UseSkillMessage) Kind() string { return "use_skill" }

// ChangeCharacterMessage activates the character at Target and deactivates
// the side's previous active character. It is never consumed by a
// character: every character on the addressed side gets to update its own
// flag, and the resolver discards the message once all of them responded.
type ChangeCharacterMessage struct {
	BaseMessage
	Target domain.Target
}

// NewChangeCharacterMessage builds an active-character switch.
func NewChangeCharacterMessage(sender domain.PlayerID, target domain.Target) *ChangeCharacterMessage {
	return &ChangeCharacterMessage{
		BaseMessage: newBaseMessage(PriorityPlayerAction, sender),
		Target:      target,
	}
}

func (m *ChangeCharacterMessage) Kind() string { return "change_character" }

// Damage is one (target, element, amount) tuple of a DealDamageMessage.
type Damage struct {
	Player   domain.PlayerID
	Position domain.CharPos
	Element  domain.ElementType
	Amount   int
}

// DealDamageMessage applies damage tuples to their targets. Targets mark
// themselves responded after applying their tuples; once at least one
// entity responded the resolver may discard it after a quiet pass. A
// damage message nobody ever responds to is malformed and stalls.
type DealDamageMessage struct {
	BaseMessage
	Targets  []Damage
	Reaction domain.ReactionType
}

// NewDealDamageMessage builds a damage message with an already-determined
// elemental reaction (ReactionNone when no reaction applies).
func NewDealDamageMessage(sender domain.PlayerID, targets []Damage, reaction domain.ReactionType) *DealDamageMessage {
	return &DealDamageMessage{
		BaseMessage: newBaseMessage(PriorityEffect, sender),
		Targets:     targets,
		Reaction:    reaction,
	}
}

func (m *DealDamageMessage) Kind() string { return "deal_damage" }

// ConsumeOnQuiet: a damage message is done once its targets had their
// chance; an untargetable one must stall instead of vanishing.
func (m *DealDamageMessage) ConsumeOnQuiet() bool {
	return m.RespondedCount() > 0
}

// CharacterDiedMessage announces a death. It is a pure notification: any
// entity may observe it, none consumes it, and the resolver discards it
// after a quiet pass.
type CharacterDiedMessage struct {
	BaseMessage
	Target domain.Target
}

// NewCharacterDiedMessage builds a death notification.
func NewCharacterDiedMessage(sender domain.PlayerID, target domain.Target) *CharacterDiedMessage {
	return &CharacterDiedMessage{
		BaseMessage: newBaseMessage(PriorityHPChanged, sender),
		Target:      target,
	}
}

func (m *CharacterDiedMessage) Kind() string         { return "character_died" }
func (m *CharacterDiedMessage) ConsumeOnQuiet() bool { return true }

// DeclareEndMessage announces that a player has ended their round.
type DeclareEndMessage struct {
	BaseMessage
}

// NewDeclareEndMessage builds a round-end declaration.
func NewDeclareEndMessage(sender domain.PlayerID) *DeclareEndMessage {
	return &DeclareEndMessage{BaseMessage: newBaseMessage(PriorityPlayerAction, sender)}
}

func (m *DeclareEndMessage) Kind() string         { return "declare_end" }
func (m *DeclareEndMessage) ConsumeOnQuiet() bool { return true }

// RoundBeginMessage opens a round. Sent by the game driver, observed by
// whatever cares (statuses, summons), discarded by the resolver.
type RoundBeginMessage struct {
	BaseMessage
	Round int
}

// NewRoundBeginMessage builds a round-open notification.
func NewRoundBeginMessage(round int) *RoundBeginMessage {
	return &RoundBeginMessage{
		BaseMessage: newBaseMessage(PriorityGameStatus, domain.PlayerNone),
		Round:       round,
	}
}

func (m *RoundBeginMessage) Kind() string         { return "round_begin" }
func (m *RoundBeginMessage) ConsumeOnQuiet() bool { return true }

// RoundEndMessage closes a round.
type RoundEndMessage struct {
	BaseMessage
	Round int
}

// NewRoundEndMessage builds a round-close notification.
func NewRoundEndMessage(round int) *RoundEndMessage {
	return &RoundEndMessage{
		BaseMessage: newBaseMessage(PriorityGameStatus, domain.PlayerNone),
		Round:       round,
	}
}

func (m *RoundEndMessage) Kind() string         { return "round_end" }
func (m *RoundEndMessage) ConsumeOnQuiet() bool { return true }
