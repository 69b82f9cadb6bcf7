package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name string `json:"name"`
}

func TestClient_RequiresConnectionOrExecutor(t *testing.T) {
	_, err := NewClient[row](nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewClient[row](nil, WithExecutor[row](&fakeExecutor[row]{}))
	assert.NoError(t, err)
}

func TestClient_CreateValidatesInput(t *testing.T) {
	client, err := NewClient[row](nil, WithExecutor[row](&fakeExecutor[row]{}))
	require.NoError(t, err)

	_, err = client.Create(context.Background(), "", row{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = client.Create(context.Background(), "card", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClient_SelectMissingIsNotFound(t *testing.T) {
	client, err := NewClient[row](nil, WithExecutor[row](&fakeExecutor[row]{}))
	require.NoError(t, err)

	_, err = client.Select(context.Background(), "card:nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.Select(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClient_UpdateMissingIsNotFound(t *testing.T) {
	client, err := NewClient[row](nil, WithExecutor[row](&fakeExecutor[row]{}))
	require.NoError(t, err)

	_, err = client.Update(context.Background(), "card:nobody", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHasLimitClause(t *testing.T) {
	assert.True(t, hasLimitClause("SELECT * FROM card LIMIT 5"))
	assert.True(t, hasLimitClause("select * from card limit 5"))
	assert.False(t, hasLimitClause("SELECT * FROM card"))
	assert.False(t, hasLimitClause("SELECT limitless FROM card"))
}
