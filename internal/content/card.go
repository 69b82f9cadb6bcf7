// Package content is the read-only character template source. Cards are
// loaded once at startup, validated, and handed out as deep copies so
// per-match cost mutations can never corrupt the shared tables.
package content

import (
	"github.com/duelsim/duelsim/internal/domain"
)

// SkillTemplate is the immutable description of one character skill as
// authored in the content files. The requirements/targets/effects fields
// hold DSL source (tengo); the engine passes them through without
// interpreting them.
type SkillTemplate struct {
	Name string         `json:"name" validate:"required"`
	Type string         `json:"type" validate:"required"`
	Cost map[string]int `json:"cost,omitempty" validate:"omitempty,min=1,dive,gte=0"`
	Free bool           `json:"free,omitempty"`

	// Damage is the structured base damage the engine turns into a
	// DealDamage message. Everything beyond plain damage lives in the
	// Effects DSL, which the engine does not read.
	Damage *DamageSpec `json:"damage,omitempty"`

	Requirements string `json:"requirements"`
	Targets      string `json:"targets"`
	Effects      string `json:"effects"`
}

// DamageSpec is a skill's declarative base damage.
type DamageSpec struct {
	Element string `json:"element" validate:"required"`
	Amount  int    `json:"amount" validate:"gte=0"`
}

// SkillType resolves the template's type name.
func (t SkillTemplate) SkillType() (domain.SkillType, bool) {
	return domain.ParseSkillType(t.Type)
}

// SkillCost converts the authored cost table into a domain.Cost, keeping
// the free/priced distinction intact.
func (t SkillTemplate) SkillCost() (domain.Cost, error) {
	if t.Free {
		return domain.FreeCost(), nil
	}
	amounts := make(map[domain.ElementType]int, len(t.Cost))
	for name, n := range t.Cost {
		element, ok := domain.ParseElement(name)
		if !ok {
			return domain.Cost{}, &InvalidCardError{Field: "cost", Value: name}
		}
		amounts[element] = n
	}
	return domain.NewCost(amounts)
}

// CharacterCard is the immutable template a CharacterEntity is built from.
type CharacterCard struct {
	ID          int             `json:"id" validate:"required,gt=0"`
	Name        string          `json:"name" validate:"required"`
	Element     string          `json:"element" validate:"required"`
	Nations     []string        `json:"nations"`
	WeaponType  string          `json:"weapon" validate:"required,oneof=bow claymore sword polearm catalyst"`
	HealthPoint int             `json:"health_point" validate:"required,gt=0"`
	Power       int             `json:"power" validate:"gte=0"`
	MaxPower    int             `json:"max_power" validate:"required,gt=0"`
	Skills      []SkillTemplate `json:"skills" validate:"required,min=1,dive"`
}

// ElementType resolves the card's element name.
func (c CharacterCard) ElementType() (domain.ElementType, bool) {
	return domain.ParseElement(c.Element)
}

// Clone returns a deep copy of the card. Lookups always clone so that the
// registry's stored card can never alias live match state.
func (c CharacterCard) Clone() CharacterCard {
	cloned := c
	cloned.Nations = append([]string(nil), c.Nations...)
	cloned.Skills = make([]SkillTemplate, len(c.Skills))
	for i, s := range c.Skills {
		skill := s
		if s.Cost != nil {
			skill.Cost = make(map[string]int, len(s.Cost))
			for k, v := range s.Cost {
				skill.Cost[k] = v
			}
		}
		cloned.Skills[i] = skill
	}
	return cloned
}

// InvalidCardError reports a card field that failed semantic validation
// beyond what struct tags can express.
type InvalidCardError struct {
	Card  string
	Field string
	Value string
}

func (e *InvalidCardError) Error() string {
	if e.Card == "" {
		return "invalid card field " + e.Field + ": " + e.Value
	}
	return "invalid card " + e.Card + ", field " + e.Field + ": " + e.Value
}
