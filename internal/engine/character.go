package engine

import (
	"fmt"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/domain"
)

// CharacterEntity is one combatant on the board. It is built once per
// match from an immutable character card (its own deep copy, so cost
// discounts never touch the shared tables) and mutated only through the
// reaction protocol. Death flips Alive instead of removing the entity:
// post-death systems still need to address it.
type CharacterEntity struct {
	BaseEntity

	Name     string
	Player   domain.PlayerID
	Position domain.CharPos

	Active bool
	Alive  bool

	ElementalInfusion   domain.ElementType
	ElementalAttachment domain.ElementType

	HealthPoint int
	MaxHealth   int
	Power       int
	MaxPower    int

	// Static fields copied from the card template.
	CardID     int
	Element    domain.ElementType
	Nations    []string
	WeaponType string

	skills []Skill
}

// NewCharacter builds a character entity from its card template. The card
// is expected to have passed content validation; anything still wrong with
// it here is a content/data error.
func NewCharacter(card content.CharacterCard, player domain.PlayerID, position domain.CharPos) (*CharacterEntity, error) {
	element, ok := card.ElementType()
	if !ok {
		return nil, fmt.Errorf("card %s: unknown element %q", card.Name, card.Element)
	}

	skills := make([]Skill, 0, len(card.Skills))
	for _, t := range card.Skills {
		skill, err := newSkillFromTemplate(t)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", card.Name, err)
		}
		skills = append(skills, skill)
	}

	return &CharacterEntity{
		BaseEntity:          NewBaseEntity(),
		Name:                card.Name,
		Player:              player,
		Position:            position,
		Alive:               true,
		ElementalInfusion:   domain.ElementNone,
		ElementalAttachment: domain.ElementNone,
		HealthPoint:         card.HealthPoint,
		MaxHealth:           card.HealthPoint,
		Power:               card.Power,
		MaxPower:            card.MaxPower,
		CardID:              card.ID,
		Element:             element,
		Nations:             append([]string(nil), card.Nations...),
		WeaponType:          card.WeaponType,
		skills:              skills,
	}, nil
}

// SkillCount returns the fixed number of skills.
func (c *CharacterEntity) SkillCount() int {
	return len(c.skills)
}

// SkillNames returns the skill names in their fixed order.
func (c *CharacterEntity) SkillNames() []string {
	names := make([]string, len(c.skills))
	for i, s := range c.skills {
		names[i] = s.Name
	}
	return names
}

// SkillByIndex looks a skill up by position in the card's skill list. An
// out-of-range index is a contract violation by the caller's content data.
func (c *CharacterEntity) SkillByIndex(index int) (*Skill, error) {
	if index < 0 || index >= len(c.skills) {
		return nil, fmt.Errorf("skill index %d out of range [0,%d) for %s: %w",
			index, len(c.skills), c.Name, domain.ErrUnknownSkill)
	}
	return &c.skills[index], nil
}

// SkillByName looks a skill up by its unique name.
func (c *CharacterEntity) SkillByName(name string) (*Skill, error) {
	for i := range c.skills {
		if c.skills[i].Name == name {
			return &c.skills[i], nil
		}
	}
	return nil, fmt.Errorf("skill %q does not exist in %s's skill set: %w",
		name, c.Name, domain.ErrUnknownSkill)
}

// SkillByType returns the first skill of the given category.
func (c *CharacterEntity) SkillByType(skillType domain.SkillType) (*Skill, error) {
	for i := range c.skills {
		if c.skills[i].Type == skillType {
			return &c.skills[i], nil
		}
	}
	return nil, fmt.Errorf("%s has no %s skill: %w", c.Name, skillType, domain.ErrUnknownSkill)
}

// Snapshot is the serializable view of a character for observers. Pure
// data, safe to hand to rendering/logging/network code.
type Snapshot struct {
	Name                string `json:"name"`
	Active              bool   `json:"active"`
	Alive               bool   `json:"alive"`
	ElementalInfusion   string `json:"elemental_infusion"`
	ElementalAttachment string `json:"elemental_attachment"`
	HealthPoint         int    `json:"health_point"`
	Power               int    `json:"power"`
	MaxPower            int    `json:"max_power"`
}

// Encode produces the observer snapshot. No side effects.
func (c *CharacterEntity) Encode() Snapshot {
	return Snapshot{
		Name:                c.Name,
		Active:              c.Active,
		Alive:               c.Alive,
		ElementalInfusion:   c.ElementalInfusion.String(),
		ElementalAttachment: c.ElementalAttachment.String(),
		HealthPoint:         c.HealthPoint,
		Power:               c.Power,
		MaxPower:            c.MaxPower,
	}
}

// GainPower charges the character's burst resource, clamped to MaxPower.
func (c *CharacterEntity) GainPower(amount int) {
	c.Power += amount
	if c.Power > c.MaxPower {
		c.Power = c.MaxPower
	}
}

// React implements the reaction protocol over the closed message set.
func (c *CharacterEntity) React(q *Queue) (bool, error) {
	msg := q.Peek()
	if msg == nil {
		return false, nil
	}
	if msg.Responded(c.EntityID()) {
		return false, nil
	}

	switch m := msg.(type) {
	case *UseSkillMessage:
		return c.reactUseSkill(q, m)
	case *ChangeCharacterMessage:
		return c.reactChangeCharacter(m)
	case *DealDamageMessage:
		return c.reactDealDamage(q, m)
	default:
		// CharacterDied, round notifications: characters have nothing to
		// do; the resolver discards them.
		return false, nil
	}
}

// reactUseSkill: only the acting character is authoritative, and it alone
// removes the message, replacing it with the resulting damage.
func (c *CharacterEntity) reactUseSkill(q *Queue, m *UseSkillMessage) (bool, error) {
	if m.Sender() != c.Player || m.UserPosition != c.Position {
		return false, nil
	}

	skill, err := c.SkillByName(m.SkillName)
	if err != nil {
		return false, err
	}

	q.Pop()

	element := skill.DamageElement
	if skill.Type == domain.SkillNormalAttack && element == domain.ElementNone {
		element = c.ElementalInfusion
	}

	targets := make([]Damage, 0, len(m.Targets))
	for _, t := range m.Targets {
		targets = append(targets, Damage{
			Player:   t.Player,
			Position: t.Position,
			Element:  element,
			Amount:   skill.BaseDamage,
		})
	}
	q.Push(NewDealDamageMessage(c.Player, targets, domain.ReactionNone))

	c.GainPower(1)
	return true, nil
}

// reactChangeCharacter: every character on the addressed side updates its
// own flag and marks itself responded; the message stays queued until the
// resolver sees the whole side responded.
func (c *CharacterEntity) reactChangeCharacter(m *ChangeCharacterMessage) (bool, error) {
	if m.Target.Player != c.Player {
		return false, nil
	}

	switch {
	case c.Position == m.Target.Position:
		c.Active = true
		m.MarkResponded(c.EntityID())
		return true, nil
	case c.Active:
		c.Active = false
		m.MarkResponded(c.EntityID())
		return true, nil
	default:
		// Bystander on the addressed side: nothing to flip, but record the
		// response so the resolver can tell the side is done with this
		// message.
		m.MarkResponded(c.EntityID())
		return false, nil
	}
}

// reactDealDamage applies every tuple addressed to this character, clamping
// health at zero and announcing death exactly once. Responding marks the
// whole message, so a later pass can never re-apply it.
func (c *CharacterEntity) reactDealDamage(q *Queue, m *DealDamageMessage) (bool, error) {
	matched := false
	changed := false
	for _, d := range m.Targets {
		if d.Player != c.Player || d.Position != c.Position {
			continue
		}
		matched = true

		dealt := d.Amount
		if dealt > c.HealthPoint {
			dealt = c.HealthPoint
		}
		c.HealthPoint -= dealt
		if dealt > 0 {
			changed = true
		}

		if d.Element != domain.ElementNone && d.Element != domain.ElementOmni && c.Alive {
			c.ElementalAttachment = d.Element
			changed = true
		}

		if c.HealthPoint == 0 && c.Alive {
			c.Alive = false
			changed = true
			q.Push(NewCharacterDiedMessage(c.Player, domain.Target{
				Player:   c.Player,
				Position: c.Position,
			}))
		}
	}

	if matched {
		// Marking even a zero-effect hit (damage to a corpse) is what
		// lets the resolver retire the message instead of stalling.
		m.MarkResponded(c.EntityID())
	}
	return changed, nil
}
