package engine

import (
	"fmt"

	"github.com/duelsim/duelsim/internal/domain"
)

// maxPasses bounds a single Resolve call. A well-formed match retires
// every message long before this; hitting the cap means an entity keeps
// reporting updates without retiring the head.
const maxPasses = 1000

// Resolver drives the queue to a fixed point. Entities are visited in a
// fixed order (player one's characters by position, then player two's) so
// a given queue state always resolves the same way.
type Resolver struct {
	sides    map[domain.PlayerID]*Side
	entities []Entity
}

// NewResolver builds a resolver over the two sides.
func NewResolver(one, two *Side) *Resolver {
	r := &Resolver{
		sides: map[domain.PlayerID]*Side{
			one.Player: one,
			two.Player: two,
		},
	}
	for _, ch := range one.Characters {
		r.entities = append(r.entities, ch)
	}
	for _, ch := range two.Characters {
		r.entities = append(r.entities, ch)
	}
	return r
}

// Resolve runs passes until the queue drains. Each pass presents the head
// to every entity; when a pass completes with no entity reporting an
// update and the head still queued, the head is either a retired
// notification to discard or evidence of a stall.
func (r *Resolver) Resolve(q *Queue) error {
	for pass := 0; q.Len() > 0; pass++ {
		if pass >= maxPasses {
			return fmt.Errorf("no fixed point after %d passes: %w", maxPasses, domain.ErrStalled)
		}

		head := q.Peek()
		updated := false
		for _, e := range r.entities {
			u, err := e.React(q)
			if err != nil {
				return err
			}
			if u {
				updated = true
			}
			if q.Peek() != head {
				// The head was retired or displaced mid-pass; start a
				// fresh pass against the new head.
				break
			}
		}

		if q.Peek() == head && !updated {
			if !r.discardable(head) {
				return fmt.Errorf("%s survived a quiet pass: %w", head.Kind(), domain.ErrStalled)
			}
			q.Pop()
		}
	}
	return nil
}

// discardable reports whether a head that survived a quiet pass may be
// retired rather than treated as a stall. Notifications retire themselves;
// a character switch retires once the addressed side has fully responded.
func (r *Resolver) discardable(m Message) bool {
	if m.ConsumeOnQuiet() {
		return true
	}
	if cc, ok := m.(*ChangeCharacterMessage); ok {
		if side, ok := r.sides[cc.Target.Player]; ok {
			return side.responded(m)
		}
	}
	return false
}
