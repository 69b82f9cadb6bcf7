package match

import (
	"context"
	"log/slog"

	"github.com/duelsim/duelsim/internal/domain"
	"github.com/duelsim/duelsim/internal/pubsub"
	"github.com/duelsim/duelsim/internal/websocket"
)

// Subscriber routes bus traffic for the match module: client actions
// coming off the observer bridge are applied to the engine, and state
// events are forwarded back out to observers.
type Subscriber struct {
	service    *Service
	subscriber pubsub.Subscriber
	publisher  pubsub.Publisher
}

// NewSubscriber creates the match bus subscriber.
func NewSubscriber(service *Service, sub pubsub.Subscriber, pub pubsub.Publisher) *Subscriber {
	return &Subscriber{service: service, subscriber: sub, publisher: pub}
}

// Start establishes all subscriptions. It returns once they are active;
// message handling continues in the background until ctx is canceled.
func (s *Subscriber) Start(ctx context.Context) error {
	slog.Info("starting match module subscriber")

	if err := pubsub.Subscribe(ctx, s.subscriber, ActionUseSkill, s.handleUseSkill); err != nil {
		return err
	}
	if err := pubsub.Subscribe(ctx, s.subscriber, ActionSwitch, s.handleSwitch); err != nil {
		return err
	}
	if err := pubsub.Subscribe(ctx, s.subscriber, ActionDeclareEnd, s.handleDeclareEnd); err != nil {
		return err
	}

	for _, topic := range []string{
		EventStateUpdated.Name(),
		EventFinished.Name(),
		EventActionRejected.Name(),
	} {
		if err := s.subscriber.Subscribe(ctx, topic, s.forwardToObservers(topic)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Subscriber) handleUseSkill(ctx context.Context, matchID string, payload UseSkillPayload) error {
	player, ok := domain.ParsePlayer(payload.Player)
	if !ok {
		slog.Warn("use_skill action with bad player", "matchID", matchID, "player", payload.Player)
		return nil
	}
	if _, err := s.service.UseSkill(ctx, matchID, player, payload.Skill, payload.Targets); err != nil {
		// The service already published the rejection; nothing to retry.
		slog.Debug("use_skill action rejected", "matchID", matchID, "error", err)
	}
	return nil
}

func (s *Subscriber) handleSwitch(ctx context.Context, matchID string, payload SwitchPayload) error {
	player, ok := domain.ParsePlayer(payload.Player)
	if !ok {
		slog.Warn("switch action with bad player", "matchID", matchID, "player", payload.Player)
		return nil
	}
	if _, err := s.service.SwitchCharacter(ctx, matchID, player, domain.CharPos(payload.Position)); err != nil {
		slog.Debug("switch action rejected", "matchID", matchID, "error", err)
	}
	return nil
}

func (s *Subscriber) handleDeclareEnd(ctx context.Context, matchID string, payload DeclareEndPayload) error {
	player, ok := domain.ParsePlayer(payload.Player)
	if !ok {
		slog.Warn("declare_end action with bad player", "matchID", matchID, "player", payload.Player)
		return nil
	}
	if _, err := s.service.DeclareEnd(ctx, matchID, player); err != nil {
		slog.Debug("declare_end action rejected", "matchID", matchID, "error", err)
	}
	return nil
}

// forwardToObservers republishes a match event onto the observer
// broadcast topic, preserving the origin topic so clients can tell
// frames apart.
func (s *Subscriber) forwardToObservers(originTopic string) pubsub.Handler {
	return func(ctx context.Context, msg pubsub.Message) error {
		if msg.MatchID == "" {
			return nil
		}
		return s.publisher.Publish(ctx, pubsub.Message{
			Topic:   websocket.TopicObserverBroadcast.Name(),
			MatchID: msg.MatchID,
			Payload: msg.Payload,
			Metadata: map[string]string{
				"origin_topic": originTopic,
			},
		})
	}
}
