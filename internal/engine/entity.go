package engine

import "github.com/google/uuid"

// Entity is anything that can observe and react to the shared resolution
// queue. The id exists solely so a message can record which entities have
// already responded to it.
type Entity interface {
	// EntityID returns the entity's process-unique identity.
	EntityID() uuid.UUID

	// React lets the entity inspect the queue's head message and, if it is
	// relevant, consume or transform it and push follow-ups. It reports
	// whether any state changed so the resolver can detect fixed points.
	// Errors are content/data errors (contract violations), never expected
	// game situations.
	React(q *Queue) (bool, error)
}

// BaseEntity provides the identity half of the Entity contract. Embed it
// and implement React.
type BaseEntity struct {
	id uuid.UUID
}

// NewBaseEntity allocates a fresh identity.
func NewBaseEntity() BaseEntity {
	return BaseEntity{id: uuid.New()}
}

// EntityID implements Entity.
func (e BaseEntity) EntityID() uuid.UUID {
	return e.id
}
