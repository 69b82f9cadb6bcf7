package engine

import (
	"fmt"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/domain"
)

// Skill is one usable capability of a character. Everything except the
// current cost is fixed at construction; discounts from external effects
// only ever lower the current cost, and nothing in the engine raises it
// back above the raw cost.
type Skill struct {
	Name string
	Type domain.SkillType

	rawCost     domain.Cost
	currentCost domain.Cost

	// Base damage the engine turns into a DealDamageMessage when the
	// skill resolves.
	BaseDamage    int
	DamageElement domain.ElementType

	// DSL descriptors, carried through untouched. The external interpreter
	// owns their meaning.
	Requirements string
	Targets      string
	Effects      string
}

// defaultBaseDamage matches skills authored without a damage block.
const defaultBaseDamage = 2

func newSkillFromTemplate(t content.SkillTemplate) (Skill, error) {
	skillType, ok := t.SkillType()
	if !ok {
		return Skill{}, fmt.Errorf("skill %s: unknown type %q", t.Name, t.Type)
	}
	cost, err := t.SkillCost()
	if err != nil {
		return Skill{}, fmt.Errorf("skill %s: %w", t.Name, err)
	}

	skill := Skill{
		Name:         t.Name,
		Type:         skillType,
		rawCost:      cost,
		currentCost:  cost.Clone(),
		Requirements: t.Requirements,
		Targets:      t.Targets,
		Effects:      t.Effects,
	}

	switch {
	case t.Damage != nil:
		element, ok := domain.ParseElement(t.Damage.Element)
		if !ok {
			return Skill{}, fmt.Errorf("skill %s: unknown damage element %q", t.Name, t.Damage.Element)
		}
		skill.BaseDamage = t.Damage.Amount
		skill.DamageElement = element
	case skillType == domain.SkillPassive:
		// Passives deal nothing unless the content says otherwise.
	default:
		skill.BaseDamage = defaultBaseDamage
		skill.DamageElement = domain.ElementNone
	}
	return skill, nil
}

// RawCost returns the undiscounted cost from the character template.
func (s *Skill) RawCost() domain.Cost {
	return s.rawCost.Clone()
}

// CurrentCost returns the cost after discounts.
func (s *Skill) CurrentCost() domain.Cost {
	return s.currentCost.Clone()
}

// Discount lowers the current cost in one element category, flooring at
// zero. Restoring a discounted cost is an external effect's job.
func (s *Skill) Discount(element domain.ElementType, amount int) {
	s.currentCost = s.currentCost.Reduce(element, amount)
}
