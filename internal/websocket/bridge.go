package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/duelsim/duelsim/internal/pubsub"
)

// Client is one observer connection, bound to a single match stream.
type Client struct {
	ID      string
	MatchID string

	conn   *websocket.Conn
	send   chan []byte
	bridge *Bridge
}

// incomingAction is a whitelisted client frame headed for the bus.
type incomingAction struct {
	clientID string
	matchID  string
	action   string
	payload  []byte
}

// Bridge manages observer websocket connections and routes frames between
// them and the bus. Observers are JSON data clients; match modules publish
// to TopicObserverBroadcast and the bridge fans out by match.
type Bridge struct {
	publisher pubsub.Publisher
	whitelist *ActionWhitelist

	// clients is keyed by match ID; one match can have many observers.
	clients map[string][]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan pubsub.Message
	incoming   chan *incomingAction

	// done is closed when Run exits, releasing pumps still trying to
	// hand their client back to the loop.
	done chan struct{}
}

// NewBridge creates a bridge publishing client actions through pub. The
// whitelist bounds what actions clients may submit.
func NewBridge(pub pubsub.Publisher, whitelist *ActionWhitelist) *Bridge {
	if whitelist == nil {
		whitelist = NewActionWhitelist()
	}
	return &Bridge{
		publisher:  pub,
		whitelist:  whitelist,
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan pubsub.Message, 64),
		incoming:   make(chan *incomingAction, 256),
		done:       make(chan struct{}),
	}
}

// Run is the bridge's routing loop. Blocks until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) {
	slog.Info("observer bridge started")
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			close(b.done)
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client.MatchID] = append(b.clients[client.MatchID], client)
			b.mu.Unlock()
			slog.Info("observer attached", "clientID", client.ID, "matchID", client.MatchID)

		case client := <-b.unregister:
			b.mu.Lock()
			if clients, ok := b.clients[client.MatchID]; ok {
				for i, c := range clients {
					if c == client {
						b.clients[client.MatchID] = append(clients[:i], clients[i+1:]...)
						break
					}
				}
				if len(b.clients[client.MatchID]) == 0 {
					delete(b.clients, client.MatchID)
				}
				close(client.send)
				slog.Info("observer detached", "clientID", client.ID, "matchID", client.MatchID)
			}
			b.mu.Unlock()

		case msg := <-b.broadcast:
			frame, err := json.Marshal(NewEventEnvelope(msg.Metadata["origin_topic"], msg.Payload))
			if err != nil {
				slog.Error("cannot frame broadcast", "error", err)
				continue
			}
			b.mu.RLock()
			for _, client := range b.clients[msg.MatchID] {
				select {
				case client.send <- frame:
				default:
					slog.Warn("observer send buffer full, dropping frame", "clientID", client.ID)
				}
			}
			b.mu.RUnlock()

		case action := <-b.incoming:
			msg := pubsub.Message{
				Topic:   action.action,
				MatchID: action.matchID,
				Payload: action.payload,
				Metadata: map[string]string{
					"client_id": action.clientID,
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				},
			}
			if err := b.publisher.Publish(ctx, msg); err != nil {
				slog.Error("cannot publish client action",
					"clientID", action.clientID, "action", action.action, "error", err)
			}
		}
	}
}

// Deliver hands a bus message to the routing loop. Wired as the handler
// for TopicObserverBroadcast subscriptions.
func (b *Bridge) Deliver(ctx context.Context, msg pubsub.Message) error {
	select {
	case b.broadcast <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// detach hands the client back to the routing loop. Returns without
// sending once Run has exited, since nothing drains unregister then.
func (b *Bridge) detach(client *Client) {
	select {
	case b.unregister <- client:
	case <-b.done:
	}
}

// ObserverCount reports how many observers one match has.
func (b *Bridge) ObserverCount(matchID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[matchID])
}

// Handler upgrades an HTTP request to an observer connection. The match
// being observed comes from the route parameter.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		matchID := c.Param("id")
		if matchID == "" {
			return c.String(http.StatusBadRequest, "match id required")
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Origin checking happens at the proxy.
		})
		if err != nil {
			slog.Error("websocket upgrade failed", "error", err)
			return err
		}

		client := &Client{
			ID:      uuid.NewString(),
			MatchID: matchID,
			conn:    conn,
			send:    make(chan []byte, 256),
			bridge:  b,
		}
		select {
		case b.register <- client:
		case <-b.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return nil
		}

		go client.writePump()
		go client.readPump()

		go func() {
			payload, _ := json.Marshal(map[string]string{
				"connectionID": client.ID,
				"matchID":      matchID,
			})
			ready := pubsub.Message{
				Topic:   TopicClientReady.Name(),
				MatchID: matchID,
				Payload: payload,
			}
			if err := b.publisher.Publish(context.Background(), ready); err != nil {
				slog.Error("cannot publish client ready event", "error", err)
			}
		}()

		return nil
	}
}

func (b *Bridge) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, clients := range b.clients {
		for _, client := range clients {
			close(client.send)
		}
	}
	b.clients = make(map[string][]*Client)
}

// readPump forwards whitelisted client actions to the bridge.
func (c *Client) readPump() {
	defer func() {
		c.bridge.detach(c)
		c.conn.Close(websocket.StatusNormalClosure, "client disconnected")

		payload, _ := json.Marshal(map[string]string{
			"connectionID": c.ID,
			"matchID":      c.MatchID,
		})
		gone := pubsub.Message{
			Topic:   TopicClientDisconnected.Name(),
			MatchID: c.MatchID,
			Payload: payload,
		}
		if err := c.bridge.publisher.Publish(context.Background(), gone); err != nil {
			slog.Error("cannot publish client disconnect event", "error", err)
		}
	}()

	for {
		_, data, err := c.conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Info("observer closed connection", "clientID", c.ID)
			} else if err != io.EOF {
				slog.Error("observer read error", "clientID", c.ID, "error", err)
			}
			break
		}

		var action ClientAction
		if err := json.Unmarshal(data, &action); err != nil {
			slog.Warn("unparseable client frame dropped", "clientID", c.ID, "error", err)
			continue
		}
		if !c.bridge.whitelist.IsAllowed(action.Action) {
			slog.Warn("client action not whitelisted", "clientID", c.ID, "action", action.Action)
			continue
		}

		c.bridge.incoming <- &incomingAction{
			clientID: c.ID,
			matchID:  c.MatchID,
			action:   action.Action,
			payload:  action.Payload,
		}
	}
}

// writePump drains the client's send buffer onto the wire.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close(websocket.StatusNormalClosure, "server-side cleanup")
	}()

	for frame := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			slog.Error("observer write error", "clientID", c.ID, "error", err)
			return
		}
	}
}
