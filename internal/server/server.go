package server

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/duelsim/duelsim/internal/config"
	"github.com/duelsim/duelsim/internal/handlers"
	"github.com/duelsim/duelsim/internal/middleware"
	"github.com/duelsim/duelsim/internal/module"
	"github.com/duelsim/duelsim/internal/registry"
)

// Server owns the echo instance and the module kernel. It registers and
// boots every module, mounts their routes under /api, and serves the
// observer websocket.
type Server struct {
	e       *echo.Echo
	cfg     config.Provider
	reg     *registry.Registry
	modules []module.Module

	// booted tracks modules whose Boot succeeded, so shutdown only
	// touches modules that actually started.
	booted []module.Module
	cancel context.CancelFunc
}

// New assembles the server around a prepared registry. The registry must
// already hold the core services (bus, content, websocket bridge); the
// modules pull what they need from it during Register.
func New(cfg config.Provider, reg *registry.Registry, modules []module.Module) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()

	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())

	s := &Server{
		e:       e,
		cfg:     cfg,
		reg:     reg,
		modules: modules,
	}
	s.registerRoutes()
	return s
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}

// Bootstrap runs the two-phase module lifecycle: every module registers
// its services first, then every module boots with its route group. A
// registration failure stops startup before anything has side effects.
func (s *Server) Bootstrap(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, m := range s.modules {
		if err := m.Register(s.reg); err != nil {
			cancel()
			return err
		}
	}

	if err := s.startBridge(runCtx); err != nil {
		cancel()
		return err
	}

	for _, m := range s.modules {
		g := s.e.Group("/api/" + m.Name())
		if err := m.Boot(runCtx, g, s.reg); err != nil {
			cancel()
			return err
		}
		s.booted = append(s.booted, m)
		slog.Info("module booted", "module", m.Name())
	}
	return nil
}

// Shutdown stops the booted modules in reverse boot order, then the
// background pumps.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	for i := len(s.booted) - 1; i >= 0; i-- {
		m := s.booted[i]
		if err := m.Shutdown(ctx); err != nil {
			slog.Error("module shutdown failed", "module", m.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	return firstErr
}
