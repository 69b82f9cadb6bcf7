package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// LiveQueryAction is the type of change reported by a live query.
type LiveQueryAction string

const (
	ActionCreate LiveQueryAction = "CREATE"
	ActionUpdate LiveQueryAction = "UPDATE"
	ActionDelete LiveQueryAction = "DELETE"
)

// LiveQueryHandler is called for each change a live query reports.
type LiveQueryHandler func(ctx context.Context, action LiveQueryAction, data interface{})

// LiveQueryFilter narrows what a table subscription watches.
type LiveQueryFilter struct {
	Where  string
	Params map[string]interface{}
	Fields []string
}

// Subscription is an active live query subscription.
type Subscription struct {
	ID     string
	Table  string
	Active bool
}

// LiveQueryService provides real-time change subscriptions over SurrealDB
// live queries.
type LiveQueryService interface {
	Subscribe(ctx context.Context, table string, filter *LiveQueryFilter, handler LiveQueryHandler) (*Subscription, error)
	SubscribeQuery(ctx context.Context, query string, params map[string]interface{}, handler LiveQueryHandler) (*Subscription, error)
	Unsubscribe(subID string) error
}

// SurrealLiveQueryService implements LiveQueryService over a managed
// connection.
type SurrealLiveQueryService struct {
	db            DBConnection
	subscriptions sync.Map // map[string]*subscriptionState
}

type subscriptionState struct {
	id          string
	table       string
	handler     LiveQueryHandler
	cancel      context.CancelFunc
	liveQueryID string
}

// NewSurrealLiveQueryService creates a live query service.
func NewSurrealLiveQueryService(db DBConnection) *SurrealLiveQueryService {
	return &SurrealLiveQueryService{db: db}
}

// Subscribe starts a live query on a table with an optional filter.
func (s *SurrealLiveQueryService) Subscribe(ctx context.Context, table string, filter *LiveQueryFilter, handler LiveQueryHandler) (*Subscription, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	fieldList := "*"
	if filter != nil && len(filter.Fields) > 0 {
		fieldList = strings.Join(filter.Fields, ", ")
	}

	query := fmt.Sprintf("LIVE SELECT %s FROM %s", fieldList, table)
	if filter != nil && filter.Where != "" {
		query = fmt.Sprintf("%s WHERE %s", query, filter.Where)
	}

	params := map[string]interface{}{}
	if filter != nil && filter.Params != nil {
		params = filter.Params
	}

	return s.subscribeQuery(ctx, table, query, params, handler)
}

// SubscribeQuery starts a live query from a raw LIVE SELECT statement.
func (s *SurrealLiveQueryService) SubscribeQuery(ctx context.Context, query string, params map[string]interface{}, handler LiveQueryHandler) (*Subscription, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	trimmed := strings.TrimSpace(strings.ToUpper(query))
	if !strings.HasPrefix(trimmed, "LIVE SELECT") {
		return nil, fmt.Errorf("query must start with 'LIVE SELECT', got: %s", query)
	}

	if params == nil {
		params = map[string]interface{}{}
	}
	return s.subscribeQuery(ctx, extractTableFromQuery(query), query, params, handler)
}

func (s *SurrealLiveQueryService) subscribeQuery(ctx context.Context, table, query string, params map[string]interface{}, handler LiveQueryHandler) (*Subscription, error) {
	subID := uuid.New().String()

	subCtx, cancel := context.WithCancel(context.Background())
	state := &subscriptionState{
		id:      subID,
		table:   table,
		handler: handler,
		cancel:  cancel,
	}
	s.subscriptions.Store(subID, state)

	err := s.db.WithConnection(ctx, func(dbConn *surrealdb.DB) error {
		slog.Info("Creating live query subscription", "subID", subID, "table", table)

		results, err := surrealdb.Query[interface{}](ctx, dbConn, query, params)
		if err != nil {
			return fmt.Errorf("failed to execute live query: %w", err)
		}
		if results == nil || len(*results) == 0 {
			return fmt.Errorf("live query returned no results")
		}

		result := (*results)[0]
		if result.Status != "OK" {
			return fmt.Errorf("live query failed with status: %s", result.Status)
		}

		liveQueryID, err := liveQueryUUID(result.Result)
		if err != nil {
			return err
		}
		state.liveQueryID = liveQueryID

		notificationChan, err := dbConn.LiveNotifications(liveQueryID)
		if err != nil {
			return fmt.Errorf("failed to get notification channel: %w", err)
		}

		go s.listenForNotifications(subCtx, state, notificationChan)
		go s.killOnCancel(subCtx, dbConn, liveQueryID)
		return nil
	})
	if err != nil {
		cancel()
		s.subscriptions.Delete(subID)
		return nil, fmt.Errorf("failed to start live query: %w", err)
	}

	return &Subscription{ID: subID, Table: table, Active: true}, nil
}

// Unsubscribe removes a live query subscription.
func (s *SurrealLiveQueryService) Unsubscribe(subID string) error {
	if state, ok := s.subscriptions.Load(subID); ok {
		state.(*subscriptionState).cancel()
		s.subscriptions.Delete(subID)
		slog.Info("Live query subscription removed", "subID", subID)
	}
	return nil
}

func (s *SurrealLiveQueryService) listenForNotifications(ctx context.Context, state *subscriptionState, notificationChan <-chan connection.Notification) {
	defer s.subscriptions.Delete(state.id)

	for {
		select {
		case <-ctx.Done():
			return

		case notification, ok := <-notificationChan:
			if !ok {
				slog.Debug("Live query notification channel closed", "subID", state.id)
				return
			}

			var action LiveQueryAction
			switch notification.Action {
			case connection.CreateAction:
				action = ActionCreate
			case connection.UpdateAction:
				action = ActionUpdate
			case connection.DeleteAction:
				action = ActionDelete
			default:
				slog.Warn("Unknown notification action", "subID", state.id, "action", notification.Action)
				continue
			}

			// The handler runs off the listener goroutine so a slow
			// consumer cannot back up the notification channel.
			go func() {
				defer func() {
					if r := recover(); r != nil {
						slog.Error("Panic in live query handler", "subID", state.id, "panic", r)
					}
				}()
				state.handler(ctx, action, notification.Result)
			}()
		}
	}
}

// killOnCancel stops the server-side live query once the subscription's
// context is canceled.
func (s *SurrealLiveQueryService) killOnCancel(ctx context.Context, dbConn *surrealdb.DB, liveQueryID string) {
	<-ctx.Done()

	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := dbConn.CloseLiveNotifications(liveQueryID); err != nil {
		slog.Warn("Failed to close live notifications", "error", err, "liveQueryID", liveQueryID)
	}

	_, err := surrealdb.Query[interface{}](cleanupCtx, dbConn, "KILL $liveQueryID",
		map[string]interface{}{"liveQueryID": liveQueryID})
	if err != nil {
		slog.Warn("Failed to kill live query", "error", err, "liveQueryID", liveQueryID)
	}
}

// liveQueryUUID pulls the live query UUID out of the statement result.
// Depending on the driver version it shows up as a string, a models.UUID,
// or a map with an "id" field.
func liveQueryUUID(result interface{}) (string, error) {
	switch v := result.(type) {
	case string:
		return v, nil
	case models.UUID:
		return v.String(), nil
	case map[string]interface{}:
		if id, ok := v["id"].(string); ok {
			return id, nil
		}
		if id, ok := v["id"].(models.UUID); ok {
			return id.String(), nil
		}
		return "", fmt.Errorf("live query result map does not contain 'id' field: %+v", v)
	case nil:
		return "", fmt.Errorf("live query returned nil result")
	default:
		return "", fmt.Errorf("unexpected live query result type: %T", result)
	}
}

func extractTableFromQuery(query string) string {
	parts := strings.Fields(query)
	for i, part := range parts {
		if strings.ToUpper(part) == "FROM" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return "unknown"
}
