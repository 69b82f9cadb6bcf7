package match

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/pubsub"
	"github.com/duelsim/duelsim/internal/websocket"
)

func TestSubscriber_AppliesClientActions(t *testing.T) {
	cards := content.NewRegistry()
	require.NoError(t, content.NewLoader().LoadDefaults(cards))

	bus := pubsub.NewWatermillBridge()
	defer bus.Close()

	service := NewService(Dependencies{Cards: cards, Publisher: bus})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, NewSubscriber(service, bus, bus).Start(ctx))

	matchID, _, err := service.Create(ctx, 7, []string{"Kaeya"}, []string{"Fischl"})
	require.NoError(t, err)

	// Opening picks arrive as client frames over the bus.
	for _, player := range []string{"player1", "player2"} {
		require.NoError(t, pubsub.PublishFor(ctx, bus, ActionSwitch, matchID,
			SwitchPayload{Player: player, Position: 0}))
	}

	require.Eventually(t, func() bool {
		snapshot, err := service.Snapshot(matchID)
		return err == nil && snapshot.Phase == "play"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, pubsub.PublishFor(ctx, bus, ActionUseSkill, matchID,
		UseSkillPayload{Player: "player1", Skill: "Frostgnaw"}))

	require.Eventually(t, func() bool {
		snapshot, err := service.Snapshot(matchID)
		return err == nil && snapshot.Sides[1].Characters[0].HealthPoint == 7
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscriber_ForwardsStateToObservers(t *testing.T) {
	cards := content.NewRegistry()
	require.NoError(t, content.NewLoader().LoadDefaults(cards))

	bus := pubsub.NewWatermillBridge()
	defer bus.Close()

	service := NewService(Dependencies{Cards: cards, Publisher: bus})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, NewSubscriber(service, bus, bus).Start(ctx))

	var mu sync.Mutex
	var forwarded []pubsub.Message
	require.NoError(t, bus.Subscribe(ctx, websocket.TopicObserverBroadcast.Name(),
		func(_ context.Context, msg pubsub.Message) error {
			mu.Lock()
			defer mu.Unlock()
			forwarded = append(forwarded, msg)
			return nil
		}))

	matchID, _, err := service.Create(ctx, 7, []string{"Kaeya"}, []string{"Fischl"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(forwarded) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	msg := forwarded[0]
	assert.Equal(t, matchID, msg.MatchID)
	assert.Equal(t, EventStateUpdated.Name(), msg.Metadata["origin_topic"])

	var update StateUpdated
	require.NoError(t, json.Unmarshal(msg.Payload, &update))
	assert.Equal(t, matchID, update.MatchID)
}
