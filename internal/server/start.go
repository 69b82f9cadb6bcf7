package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start bootstraps the modules, serves HTTP on the configured address
// and blocks until an interrupt or terminate signal arrives. It returns
// after a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Bootstrap(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.e.Start(s.cfg.ServerAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	slog.Info("server listening", "addr", s.cfg.ServerAddr())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("shutting down", "reason", ctx.Err())
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(stopCtx); err != nil {
		slog.Error("module shutdown incomplete", "error", err)
	}
	return s.e.Shutdown(stopCtx)
}
