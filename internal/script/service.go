package script

import (
	"context"
	"log/slog"

	"github.com/duelsim/duelsim/internal/config"
	"github.com/duelsim/duelsim/internal/registry"
)

// EngineKey locates the script engine in the service registry.
var EngineKey = registry.Key[*Engine]("script.engine")

// RegisterService creates the script engine, initializes it and publishes
// it in the application registry.
func RegisterService(reg *registry.Registry, cfg config.Provider) (*Engine, error) {
	engine := NewEngine(Dependencies{Config: cfg})

	hotReload := cfg == nil || cfg.HotReloadScripts()
	if err := engine.Initialize(context.Background(), hotReload); err != nil {
		return nil, err
	}

	registry.Set(reg, EngineKey, engine)
	slog.Info("script engine service registered", "hot_reload", hotReload)
	return engine, nil
}

// MustGetService retrieves the script engine or panics during wiring.
func MustGetService(reg *registry.Registry) *Engine {
	return registry.MustGet(reg, EngineKey)
}
