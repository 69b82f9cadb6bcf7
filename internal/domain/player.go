package domain

import "fmt"

// PlayerID identifies one of the two seats in a match.
type PlayerID int

const (
	PlayerNone PlayerID = iota
	Player1
	Player2
)

// Opponent returns the other seat. PlayerNone has no opponent and is
// returned unchanged.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return p
	}
}

func (p PlayerID) String() string {
	switch p {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return "none"
	}
}

// ParsePlayer converts a seat name ("player1", "player2") to its PlayerID.
func ParsePlayer(name string) (PlayerID, bool) {
	switch name {
	case "player1":
		return Player1, true
	case "player2":
		return Player2, true
	default:
		return PlayerNone, false
	}
}

// CharPos is a character's board slot within its player's side.
// Slots are dense, starting at 0.
type CharPos int

// PosNone marks positions that are intentionally unresolved, e.g. a
// message addressed to a whole side rather than one slot.
const PosNone CharPos = -1

func (p CharPos) String() string {
	if p == PosNone {
		return "none"
	}
	return fmt.Sprintf("pos%d", int(p))
}

// Target addresses one character on the board.
type Target struct {
	Player   PlayerID `json:"player"`
	Position CharPos  `json:"position"`
}

// SkillType categorizes a character skill.
type SkillType int

const (
	SkillNormalAttack SkillType = iota
	SkillElemental
	SkillBurst
	SkillPassive
)

var skillTypeNames = map[SkillType]string{
	SkillNormalAttack: "normal_attack",
	SkillElemental:    "elemental_skill",
	SkillBurst:        "elemental_burst",
	SkillPassive:      "passive",
}

func (s SkillType) String() string {
	if name, ok := skillTypeNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSkillType converts a content-file skill type name to its SkillType.
func ParseSkillType(name string) (SkillType, bool) {
	for s, n := range skillTypeNames {
		if n == name {
			return s, true
		}
	}
	return SkillNormalAttack, false
}
