package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/domain"
	"github.com/duelsim/duelsim/internal/engine"
	"github.com/duelsim/duelsim/internal/middleware"
	"github.com/duelsim/duelsim/internal/pubsub"
	"github.com/duelsim/duelsim/internal/registry"
	"github.com/duelsim/duelsim/internal/script"
)

// ServiceKey locates the match service in the service registry.
var ServiceKey = registry.Key[*Service]("match.service")

// ErrMatchNotFound is returned when a match ID does not name a running
// match.
var ErrMatchNotFound = fmt.Errorf("match not found: %w", domain.ErrNotFound)

// liveMatch is one running game plus the lock serializing access to it.
// The engine itself is not safe for concurrent use.
type liveMatch struct {
	mu   sync.Mutex
	id   string
	game *engine.Game

	deckOne []string
	deckTwo []string
	seed    int64
}

// Service owns all running matches. It is the only component that touches
// engine state; everything else talks to it through HTTP or the bus.
type Service struct {
	mu      sync.RWMutex
	matches map[string]*liveMatch

	cards     *content.Registry
	publisher pubsub.Publisher
	scripts   *script.Engine
	recorder  *Recorder
}

// Dependencies holds what the match service needs. Scripts may be nil,
// in which case skill effect descriptors are skipped; Recorder may be
// nil, in which case transcripts are disabled.
type Dependencies struct {
	Cards     *content.Registry
	Publisher pubsub.Publisher
	Scripts   *script.Engine
	Recorder  *Recorder
}

// NewService creates the match service.
func NewService(deps Dependencies) *Service {
	return &Service{
		matches:   make(map[string]*liveMatch),
		cards:     deps.Cards,
		publisher: deps.Publisher,
		scripts:   deps.Scripts,
		recorder:  deps.Recorder,
	}
}

// Summary is the listing view of one match.
type Summary struct {
	MatchID string `json:"match_id"`
	Round   int    `json:"round"`
	Phase   string `json:"phase"`
	Winner  string `json:"winner"`
}

// Create opens a match from two decks of card names. The seed fixes every
// random decision in the game, so the same seed and actions replay to the
// same result.
func (s *Service) Create(ctx context.Context, seed int64, deckOne, deckTwo []string) (string, engine.GameSnapshot, error) {
	one, err := s.resolveDeck(deckOne)
	if err != nil {
		return "", engine.GameSnapshot{}, fmt.Errorf("deck one: %w", err)
	}
	two, err := s.resolveDeck(deckTwo)
	if err != nil {
		return "", engine.GameSnapshot{}, fmt.Errorf("deck two: %w", err)
	}

	game, err := engine.NewGame(seed, one, two)
	if err != nil {
		return "", engine.GameSnapshot{}, err
	}

	m := &liveMatch{
		id:      uuid.NewString(),
		game:    game,
		deckOne: deckOne,
		deckTwo: deckTwo,
		seed:    seed,
	}

	s.mu.Lock()
	s.matches[m.id] = m
	s.mu.Unlock()

	middleware.FromContext(ctx).Info("match created", "matchID", m.id, "seed", seed,
		"deckOne", deckOne, "deckTwo", deckTwo)

	created := Created{
		MatchID: m.id,
		Seed:    seed,
		DeckOne: deckOne,
		DeckTwo: deckTwo,
	}
	if err := pubsub.PublishFor(ctx, s.publisher, EventCreated, m.id, created); err != nil {
		slog.Error("failed to publish match created event", "matchID", m.id, "error", err)
	}
	s.record(m.id, EventCreated.Name(), created)

	snapshot := game.Encode()
	s.publishState(ctx, m.id, snapshot)
	return m.id, snapshot, nil
}

// Snapshot returns the observer view of one match.
func (s *Service) Snapshot(matchID string) (engine.GameSnapshot, error) {
	m, err := s.match(matchID)
	if err != nil {
		return engine.GameSnapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game.Encode(), nil
}

// List summarizes every running match, sorted by ID for stable output.
func (s *Service) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.matches))
	for _, m := range s.matches {
		m.mu.Lock()
		out = append(out, Summary{
			MatchID: m.id,
			Round:   m.game.Round(),
			Phase:   m.game.Phase().String(),
			Winner:  m.game.Winner().String(),
		})
		m.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out
}

// Remove drops a match. Removing an unknown match is not an error.
func (s *Service) Remove(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, matchID)
}

// UseSkill fires the named skill for a side.
func (s *Service) UseSkill(ctx context.Context, matchID string, player domain.PlayerID, skillName string, targets []domain.Target) (engine.GameSnapshot, error) {
	return s.apply(ctx, matchID, player, "use_skill", engine.UseSkillAction{
		Side:      player,
		SkillName: skillName,
		Targets:   targets,
	})
}

// SwitchCharacter changes a side's active character.
func (s *Service) SwitchCharacter(ctx context.Context, matchID string, player domain.PlayerID, position domain.CharPos) (engine.GameSnapshot, error) {
	return s.apply(ctx, matchID, player, "switch_character", engine.ChangeCharacterAction{
		Side:     player,
		Position: position,
	})
}

// DeclareEnd ends the round for a side.
func (s *Service) DeclareEnd(ctx context.Context, matchID string, player domain.PlayerID) (engine.GameSnapshot, error) {
	return s.apply(ctx, matchID, player, "declare_end", engine.DeclareEndAction{Side: player})
}

func (s *Service) apply(ctx context.Context, matchID string, player domain.PlayerID, actionName string, action engine.Action) (engine.GameSnapshot, error) {
	m, err := s.match(matchID)
	if err != nil {
		return engine.GameSnapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	wasFinished := m.game.Phase() == engine.PhaseFinished

	if err := m.game.Submit(action); err != nil {
		s.publishRejection(ctx, matchID, player, actionName, err)
		return engine.GameSnapshot{}, err
	}

	if use, ok := action.(engine.UseSkillAction); ok {
		s.runSkillEffects(ctx, m, player, use.SkillName)
	}

	snapshot := m.game.Encode()
	s.publishState(ctx, matchID, snapshot)

	if !wasFinished && m.game.Phase() == engine.PhaseFinished {
		s.publishFinished(ctx, m, snapshot)
	}
	return snapshot, nil
}

func (s *Service) match(matchID string) (*liveMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

func (s *Service) resolveDeck(names []string) ([]content.CharacterCard, error) {
	if len(names) == 0 {
		return nil, errors.New("deck must name at least one character")
	}
	cards := make([]content.CharacterCard, 0, len(names))
	for _, name := range names {
		card, err := s.cards.Card(name)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// runSkillEffects feeds the fired skill's effects descriptor to the DSL
// engine. Effects are advisory on top of the structural damage the engine
// already resolved, so failures are logged, not fatal.
func (s *Service) runSkillEffects(ctx context.Context, m *liveMatch, player domain.PlayerID, skillName string) {
	if s.scripts == nil {
		return
	}

	side, err := m.game.Side(player)
	if err != nil {
		return
	}
	active := side.ActiveCharacter()
	if active == nil {
		return
	}
	skill, err := active.SkillByName(skillName)
	if err != nil || skill.Effects == "" {
		return
	}

	input := &script.Input{Context: map[string]interface{}{
		"actor": active.Name,
		"skill": skillName,
		"event": map[string]interface{}{
			"match_id": m.id,
			"round":    m.game.Round(),
			"player":   player.String(),
		},
	}}

	out, err := s.scripts.ExecuteSource(ctx, "skills", skillName, skill.Effects, input)
	if err != nil {
		slog.Warn("skill effects script failed",
			"matchID", m.id, "skill", skillName, "error", err)
		return
	}
	if out.Result != nil {
		slog.Debug("skill effects script result",
			"matchID", m.id, "skill", skillName, "result", out.Result)
	}
}

func (s *Service) publishState(ctx context.Context, matchID string, snapshot engine.GameSnapshot) {
	updated := StateUpdated{
		MatchID:  matchID,
		Snapshot: snapshot,
	}
	if err := pubsub.PublishFor(ctx, s.publisher, EventStateUpdated, matchID, updated); err != nil {
		slog.Error("failed to publish state update", "matchID", matchID, "error", err)
	}
	s.record(matchID, EventStateUpdated.Name(), updated)
}

func (s *Service) publishFinished(ctx context.Context, m *liveMatch, snapshot engine.GameSnapshot) {
	slog.Info("match finished", "matchID", m.id, "winner", snapshot.Winner, "rounds", snapshot.Round)

	finished := Finished{
		MatchID: m.id,
		Winner:  snapshot.Winner,
		Rounds:  snapshot.Round,
	}
	if err := pubsub.PublishFor(ctx, s.publisher, EventFinished, m.id, finished); err != nil {
		slog.Error("failed to publish match finished event", "matchID", m.id, "error", err)
	}
	s.record(m.id, EventFinished.Name(), finished)
	if s.recorder != nil {
		if err := s.recorder.Flush(ctx, m.id); err != nil {
			slog.Error("failed to persist match transcript", "matchID", m.id, "error", err)
		}
	}

	if s.scripts != nil {
		input := &script.Input{Context: map[string]interface{}{
			"event": map[string]interface{}{
				"match_id": m.id,
				"winner":   snapshot.Winner,
				"rounds":   snapshot.Round,
			},
		}}
		if _, err := s.scripts.Execute(ctx, "match", "on_match_over", input); err != nil {
			slog.Warn("match-over script failed", "matchID", m.id, "error", err)
		}
	}
}

func (s *Service) publishRejection(ctx context.Context, matchID string, player domain.PlayerID, actionName string, cause error) {
	rejected := ActionRejected{
		MatchID: matchID,
		Player:  player.String(),
		Action:  actionName,
		Reason:  cause.Error(),
	}
	if err := pubsub.PublishFor(ctx, s.publisher, EventActionRejected, matchID, rejected); err != nil {
		slog.Error("failed to publish action rejection", "matchID", matchID, "error", err)
	}
	s.record(matchID, EventActionRejected.Name(), rejected)
}

// record appends to the match's transcript when recording is enabled.
func (s *Service) record(matchID, topic string, payload interface{}) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(matchID, topic, payload); err != nil {
		slog.Error("failed to record transcript entry", "matchID", matchID, "topic", topic, "error", err)
	}
}

// ErrTranscriptsDisabled is returned when no transcript store is wired.
var ErrTranscriptsDisabled = errors.New("match transcripts are not enabled")

// Transcript returns the recorded event log of a match.
func (s *Service) Transcript(ctx context.Context, matchID string) ([]TranscriptEntry, error) {
	if s.recorder == nil {
		return nil, ErrTranscriptsDisabled
	}
	return s.recorder.Transcript(ctx, matchID)
}
