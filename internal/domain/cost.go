package domain

import "errors"

// ErrEmptyCost is returned when a cost mapping is constructed from an empty
// table. A skill with no cost must use FreeCost; an empty mapping is
// malformed content, not a free skill.
var ErrEmptyCost = errors.New("empty cost mapping: use an explicit free cost")

// Cost is a skill's resource requirement: element category to dice amount.
// The zero value is NOT valid; construct through NewCost or FreeCost so
// "free" and "malformed" stay distinguishable.
type Cost struct {
	free    bool
	amounts map[ElementType]int
}

// NewCost builds a cost from a non-empty amount table. Absent categories
// cost zero.
func NewCost(amounts map[ElementType]int) (Cost, error) {
	if len(amounts) == 0 {
		return Cost{}, ErrEmptyCost
	}
	copied := make(map[ElementType]int, len(amounts))
	for e, n := range amounts {
		copied[e] = n
	}
	return Cost{amounts: copied}, nil
}

// FreeCost is the explicit no-cost marker.
func FreeCost() Cost {
	return Cost{free: true}
}

// Free reports whether this is the explicit no-cost marker.
func (c Cost) Free() bool {
	return c.free
}

// Valid reports whether the cost was built through a constructor.
func (c Cost) Valid() bool {
	return c.free || len(c.amounts) > 0
}

// Amount returns the dice required for one element category.
func (c Cost) Amount(e ElementType) int {
	return c.amounts[e]
}

// Amounts returns a copy of the full amount table. Free costs return nil.
func (c Cost) Amounts() map[ElementType]int {
	if c.free || c.amounts == nil {
		return nil
	}
	copied := make(map[ElementType]int, len(c.amounts))
	for e, n := range c.amounts {
		copied[e] = n
	}
	return copied
}

// Total returns the summed dice count across categories.
func (c Cost) Total() int {
	total := 0
	for _, n := range c.amounts {
		total += n
	}
	return total
}

// Clone returns an independent copy. Costs are handed from the static
// content tables to per-match skills, so aliasing the amount table would
// let one match's discounts bleed into another.
func (c Cost) Clone() Cost {
	if c.free {
		return FreeCost()
	}
	cloned, _ := NewCost(c.amounts)
	return cloned
}

// Reduce lowers one category by n, flooring at zero. It never turns a
// priced cost into the free marker; a fully discounted cost still reports
// its (zeroed) categories.
func (c Cost) Reduce(e ElementType, n int) Cost {
	if c.free || n <= 0 {
		return c
	}
	reduced := c.Clone()
	cur := reduced.amounts[e]
	cur -= n
	if cur < 0 {
		cur = 0
	}
	reduced.amounts[e] = cur
	return reduced
}
