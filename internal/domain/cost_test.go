package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCost(t *testing.T) {
	cost, err := NewCost(map[ElementType]int{ElementCryo: 3, ElementNone: 1})
	require.NoError(t, err)

	assert.True(t, cost.Valid())
	assert.False(t, cost.Free())
	assert.Equal(t, 3, cost.Amount(ElementCryo))
	assert.Equal(t, 0, cost.Amount(ElementPyro))
	assert.Equal(t, 4, cost.Total())
}

func TestNewCost_EmptyMapping(t *testing.T) {
	_, err := NewCost(nil)
	assert.ErrorIs(t, err, ErrEmptyCost)

	_, err = NewCost(map[ElementType]int{})
	assert.ErrorIs(t, err, ErrEmptyCost)
}

func TestFreeCost(t *testing.T) {
	cost := FreeCost()

	assert.True(t, cost.Free())
	assert.True(t, cost.Valid())
	assert.Zero(t, cost.Total())
	assert.Nil(t, cost.Amounts())
}

func TestCost_ZeroValueIsInvalid(t *testing.T) {
	var cost Cost
	assert.False(t, cost.Valid())
	assert.False(t, cost.Free())
}

func TestCost_CloneIsIndependent(t *testing.T) {
	cost, err := NewCost(map[ElementType]int{ElementElectro: 2})
	require.NoError(t, err)

	clone := cost.Clone()
	reduced := clone.Reduce(ElementElectro, 1)

	assert.Equal(t, 2, cost.Amount(ElementElectro))
	assert.Equal(t, 2, clone.Amount(ElementElectro))
	assert.Equal(t, 1, reduced.Amount(ElementElectro))
}

func TestCost_AmountsReturnsCopy(t *testing.T) {
	cost, err := NewCost(map[ElementType]int{ElementPyro: 2})
	require.NoError(t, err)

	amounts := cost.Amounts()
	amounts[ElementPyro] = 99

	assert.Equal(t, 2, cost.Amount(ElementPyro))
}

func TestCost_Reduce(t *testing.T) {
	cost, err := NewCost(map[ElementType]int{ElementCryo: 3})
	require.NoError(t, err)

	t.Run("floors at zero", func(t *testing.T) {
		reduced := cost.Reduce(ElementCryo, 5)
		assert.Equal(t, 0, reduced.Amount(ElementCryo))
		assert.False(t, reduced.Free())
		assert.True(t, reduced.Valid())
	})

	t.Run("other categories untouched", func(t *testing.T) {
		reduced := cost.Reduce(ElementPyro, 2)
		assert.Equal(t, 3, reduced.Amount(ElementCryo))
	})

	t.Run("free cost stays free", func(t *testing.T) {
		free := FreeCost().Reduce(ElementCryo, 1)
		assert.True(t, free.Free())
	})

	t.Run("non-positive amounts are ignored", func(t *testing.T) {
		same := cost.Reduce(ElementCryo, 0)
		assert.Equal(t, 3, same.Amount(ElementCryo))
	})
}

func TestParseElement(t *testing.T) {
	e, ok := ParseElement("cryo")
	require.True(t, ok)
	assert.Equal(t, ElementCryo, e)
	assert.Equal(t, "cryo", e.String())

	_, ok = ParseElement("plasma")
	assert.False(t, ok)
}

func TestPlayerID_Opponent(t *testing.T) {
	assert.Equal(t, Player2, Player1.Opponent())
	assert.Equal(t, Player1, Player2.Opponent())
	assert.Equal(t, PlayerNone, PlayerNone.Opponent())
}

func TestParsePlayer(t *testing.T) {
	p, ok := ParsePlayer("player2")
	require.True(t, ok)
	assert.Equal(t, Player2, p)

	_, ok = ParsePlayer("player3")
	assert.False(t, ok)
}
