package engine

import (
	"testing"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSides(t *testing.T) (*Side, *Side, *Resolver) {
	t.Helper()
	one, err := NewSide(domain.Player1, []content.CharacterCard{
		testCard("Kaeya", 10),
		testCard("Diluc", 10),
	})
	require.NoError(t, err)
	two, err := NewSide(domain.Player2, []content.CharacterCard{
		testCard("Fischl", 10),
		testCard("Noelle", 2),
	})
	require.NoError(t, err)
	return one, two, NewResolver(one, two)
}

func TestResolver_DrainsSkillChain(t *testing.T) {
	one, two, r := testSides(t)
	one.Characters[0].Active = true
	two.Characters[0].Active = true

	q := NewQueue()
	q.Push(NewUseSkillMessage(domain.Player1, 0, "Frost Edge",
		[]domain.Target{{Player: domain.Player2, Position: 0}}))

	require.NoError(t, r.Resolve(q))
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 7, two.Characters[0].HealthPoint)
	assert.Equal(t, domain.ElementCryo, two.Characters[0].ElementalAttachment)
	assert.Equal(t, 1, one.Characters[0].Power)
}

func TestResolver_DeathChainTerminates(t *testing.T) {
	_, two, r := testSides(t)

	q := NewQueue()
	q.Push(NewUseSkillMessage(domain.Player1, 0, "Frost Edge",
		[]domain.Target{{Player: domain.Player2, Position: 1}}))

	require.NoError(t, r.Resolve(q))
	assert.Equal(t, 0, q.Len(), "damage and the death notification both retire")
	assert.Equal(t, 0, two.Characters[1].HealthPoint)
	assert.False(t, two.Characters[1].Alive)
}

func TestResolver_ChangeCharacterRetiresAfterSideResponds(t *testing.T) {
	one, two, r := testSides(t)
	one.Characters[0].Active = true

	q := NewQueue()
	q.Push(NewChangeCharacterMessage(domain.Player1,
		domain.Target{Player: domain.Player1, Position: 1}))

	require.NoError(t, r.Resolve(q))
	assert.Equal(t, 0, q.Len())
	assert.False(t, one.Characters[0].Active)
	assert.True(t, one.Characters[1].Active)
	for _, ch := range two.Characters {
		assert.False(t, ch.Active)
	}
}

func TestResolver_StallsOnUnaddressableDamage(t *testing.T) {
	_, _, r := testSides(t)

	// Nobody sits at position 7, so no entity ever responds.
	q := NewQueue()
	q.Push(NewDealDamageMessage(domain.Player1, []Damage{
		{Player: domain.Player2, Position: 7, Element: domain.ElementPyro, Amount: 3},
	}, domain.ReactionNone))

	err := r.Resolve(q)
	require.ErrorIs(t, err, domain.ErrStalled)
	assert.Equal(t, 1, q.Len(), "the malformed head stays for inspection")
}

func TestResolver_StallsOnSkillFromEmptySeat(t *testing.T) {
	_, _, r := testSides(t)

	q := NewQueue()
	q.Push(NewUseSkillMessage(domain.Player1, 5, "Strike", nil))

	err := r.Resolve(q)
	require.ErrorIs(t, err, domain.ErrStalled)
}

func TestResolver_ConsumesNotificationsOnQuietPass(t *testing.T) {
	_, _, r := testSides(t)

	q := NewQueue()
	q.Push(NewRoundBeginMessage(1))
	q.Push(NewDeclareEndMessage(domain.Player1))
	q.Push(NewRoundEndMessage(1))
	q.Push(NewCharacterDiedMessage(domain.Player2, domain.Target{Player: domain.Player2, Position: 0}))

	require.NoError(t, r.Resolve(q))
	assert.Equal(t, 0, q.Len())
}

func TestResolver_DeterministicOrder(t *testing.T) {
	// The same queue contents against fresh sides always produce the same
	// final state.
	run := func() GameSnapshot {
		one, two, r := testSides(t)
		one.Characters[0].Active = true
		two.Characters[0].Active = true

		q := NewQueue()
		q.Push(NewUseSkillMessage(domain.Player1, 0, "Strike",
			[]domain.Target{{Player: domain.Player2, Position: 0}}))
		q.Push(NewUseSkillMessage(domain.Player2, 0, "Frost Edge",
			[]domain.Target{{Player: domain.Player1, Position: 0}}))
		require.NoError(t, r.Resolve(q))

		return GameSnapshot{Sides: []SideSnapshot{one.Encode(), two.Encode()}}
	}

	assert.Equal(t, run(), run())
}
