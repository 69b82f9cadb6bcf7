package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/duelsim/duelsim/internal/app"
	"github.com/duelsim/duelsim/internal/config"
	"github.com/duelsim/duelsim/internal/logging"
	"github.com/duelsim/duelsim/internal/server"
)

func main() {
	cfg := config.New()
	logging.New(cfg)

	ctx := context.Background()
	reg, cleanup, err := app.BuildRegistry(ctx, cfg)
	if err != nil {
		slog.Error("failed to build application services", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	s := server.New(cfg, reg, app.NewModules())
	if err := s.Start(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
