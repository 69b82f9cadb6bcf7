package match

import (
	"context"
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/module"
	"github.com/duelsim/duelsim/internal/modules/match/scripts"
	"github.com/duelsim/duelsim/internal/pubsub"
	"github.com/duelsim/duelsim/internal/registry"
	"github.com/duelsim/duelsim/internal/script"
	"github.com/duelsim/duelsim/internal/storage"
	"github.com/duelsim/duelsim/internal/websocket"
)

// Module is the match feature: the engine service, its HTTP surface and
// its bus subscriptions.
type Module struct {
	module.BaseModule

	cancel context.CancelFunc
}

// New creates the match module.
func New() *Module {
	return &Module{}
}

// Name returns the module's unique name.
func (m *Module) Name() string {
	return "match"
}

// Register creates the match service and publishes it in the registry.
// The script engine is optional; matches run without skill effect
// descriptors when it is absent.
func (m *Module) Register(reg *registry.Registry) error {
	cards := registry.MustGet(reg, content.RegistryKey)
	publisher := registry.MustGet(reg, pubsub.PublisherKey)

	engine, _ := registry.Get(reg, script.EngineKey)
	if engine != nil {
		engine.RegisterProvider(scripts.Provider{})
	}

	var recorder *Recorder
	if store, ok := registry.Get(reg, storage.StoreKey); ok {
		recorder = NewRecorder(store)
	}

	service := NewService(Dependencies{
		Cards:     cards,
		Publisher: publisher,
		Scripts:   engine,
		Recorder:  recorder,
	})
	registry.Set(reg, ServiceKey, service)

	if whitelist, ok := registry.Get(reg, websocket.WhitelistKey); ok {
		for _, action := range []string{
			ActionUseSkill.Name(),
			ActionSwitch.Name(),
			ActionDeclareEnd.Name(),
		} {
			if err := whitelist.AddAction(action); err != nil && !errors.Is(err, websocket.ErrActionAlreadyExists) {
				return err
			}
		}
	}

	slog.Info("match module registered")
	return nil
}

// Boot mounts the HTTP routes and starts the bus subscriber.
func (m *Module) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	service := registry.MustGet(reg, ServiceKey)
	subscriber := registry.MustGet(reg, pubsub.SubscriberKey)
	publisher := registry.MustGet(reg, pubsub.PublisherKey)

	subCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	if err := NewSubscriber(service, subscriber, publisher).Start(subCtx); err != nil {
		cancel()
		return err
	}

	NewHandler(service).RegisterRoutes(g)
	return nil
}

// Shutdown stops the bus subscriptions.
func (m *Module) Shutdown(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}
