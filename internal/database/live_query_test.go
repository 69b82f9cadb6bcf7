package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeQuery_RejectsNonLiveQueries(t *testing.T) {
	svc := NewSurrealLiveQueryService(nil)

	_, err := svc.SubscribeQuery(context.Background(), "SELECT * FROM card", nil,
		func(context.Context, LiveQueryAction, interface{}) {})
	assert.ErrorContains(t, err, "LIVE SELECT")
}

func TestSubscribeQuery_RequiresHandler(t *testing.T) {
	svc := NewSurrealLiveQueryService(nil)

	_, err := svc.SubscribeQuery(context.Background(), "LIVE SELECT * FROM card", nil, nil)
	assert.ErrorContains(t, err, "handler")

	_, err = svc.Subscribe(context.Background(), "card", nil, nil)
	assert.ErrorContains(t, err, "handler")
}

func TestExtractTableFromQuery(t *testing.T) {
	assert.Equal(t, "card", extractTableFromQuery("LIVE SELECT * FROM card WHERE x = 1"))
	assert.Equal(t, "card", extractTableFromQuery("LIVE SELECT name from card"))
	assert.Equal(t, "unknown", extractTableFromQuery("LIVE SELECT *"))
}

func TestLiveQueryUUID(t *testing.T) {
	id, err := liveQueryUUID("abc-123")
	assert.NoError(t, err)
	assert.Equal(t, "abc-123", id)

	_, err = liveQueryUUID(nil)
	assert.Error(t, err)

	_, err = liveQueryUUID(42)
	assert.Error(t, err)

	id, err = liveQueryUUID(map[string]interface{}{"id": "xyz"})
	assert.NoError(t, err)
	assert.Equal(t, "xyz", id)

	_, err = liveQueryUUID(map[string]interface{}{"other": "xyz"})
	assert.Error(t, err)
}
