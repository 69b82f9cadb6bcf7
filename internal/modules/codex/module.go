package codex

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/database"
	"github.com/duelsim/duelsim/internal/module"
	"github.com/duelsim/duelsim/internal/registry"
	"github.com/duelsim/duelsim/internal/script"
)

// Module is the codex feature: the card catalog and its HTTP surface.
type Module struct {
	module.BaseModule
}

// New creates the codex module.
func New() *Module {
	return &Module{}
}

// Name returns the module's unique name.
func (m *Module) Name() string {
	return "codex"
}

// Register creates the codex service. The script engine and card store
// are both optional.
func (m *Module) Register(reg *registry.Registry) error {
	cards := registry.MustGet(reg, content.RegistryKey)

	scripts, _ := registry.Get(reg, script.EngineKey)
	store, _ := registry.Get(reg, database.CardStoreKey)

	registry.Set(reg, ServiceKey, NewService(Dependencies{
		Cards:   cards,
		Scripts: scripts,
		Store:   store,
	}))

	slog.Info("codex module registered", "cards", cards.Len(), "persistent", store != nil)
	return nil
}

// Boot mounts the HTTP routes and mirrors the card set into the store.
func (m *Module) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	service := registry.MustGet(reg, ServiceKey)

	if err := service.SyncToStore(ctx); err != nil {
		// The catalog still works from memory; persistence catches up on
		// the next boot.
		slog.Error("card set mirror failed", "error", err)
	}

	NewHandler(service).RegisterRoutes(g)
	return nil
}
