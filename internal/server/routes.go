package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/duelsim/duelsim/internal/middleware"
	"github.com/duelsim/duelsim/internal/pubsub"
	"github.com/duelsim/duelsim/internal/registry"
	"github.com/duelsim/duelsim/internal/websocket"
)

// registerRoutes mounts the framework-level routes. Module routes are
// mounted per module during Bootstrap.
func (s *Server) registerRoutes() {
	s.e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Observers attach to a match here. The bridge handles the upgrade
	// and the per-match fan-out.
	s.e.GET("/ws/matches/:id", func(c echo.Context) error {
		bridge, ok := registry.Get(s.reg, websocket.BridgeKey)
		if !ok {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "observer bridge not running",
			})
		}
		return bridge.Handler()(c)
	}, middleware.RateLimiter(20))
}

// startBridge runs the websocket fan-out and feeds it from the bus.
// Without a bridge in the registry the server still works over HTTP.
func (s *Server) startBridge(ctx context.Context) error {
	bridge, ok := registry.Get(s.reg, websocket.BridgeKey)
	if !ok {
		return nil
	}

	go bridge.Run(ctx)

	subscriber := registry.MustGet(s.reg, pubsub.SubscriberKey)
	return subscriber.Subscribe(ctx, websocket.TopicObserverBroadcast.Name(), bridge.Deliver)
}
