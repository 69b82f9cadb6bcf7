package engine

import (
	"testing"

	"github.com/duelsim/duelsim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PriorityOrder(t *testing.T) {
	q := NewQueue()

	died := NewCharacterDiedMessage(domain.Player1, domain.Target{Player: domain.Player1, Position: 0})
	skill := NewUseSkillMessage(domain.Player1, 0, "Strike", nil)
	damage := NewDealDamageMessage(domain.Player1, nil, domain.ReactionNone)

	q.Push(damage)
	q.Push(died)
	q.Push(skill)

	require.Equal(t, 3, q.Len())
	assert.Same(t, Message(skill), q.Pop(), "player actions resolve before their effects")
	assert.Same(t, Message(damage), q.Pop())
	assert.Same(t, Message(died), q.Pop())
}

func TestQueue_StableWithinPriority(t *testing.T) {
	q := NewQueue()

	first := NewUseSkillMessage(domain.Player1, 0, "Strike", nil)
	second := NewUseSkillMessage(domain.Player2, 0, "Strike", nil)
	third := NewUseSkillMessage(domain.Player1, 1, "Strike", nil)

	q.Push(first)
	q.Push(second)
	q.Push(third)

	assert.Same(t, Message(first), q.Pop())
	assert.Same(t, Message(second), q.Pop())
	assert.Same(t, Message(third), q.Pop())
}

func TestQueue_PeekDoesNotRemove(t *testing.T) {
	q := NewQueue()
	assert.Nil(t, q.Peek())

	msg := NewDeclareEndMessage(domain.Player1)
	q.Push(msg)

	assert.Same(t, Message(msg), q.Peek())
	assert.Same(t, Message(msg), q.Peek())
	assert.Equal(t, 1, q.Len())
}
