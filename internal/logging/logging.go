// Package logging configures the process-wide slog logger. Everything
// else logs through slog.Default, so this runs once, right after the
// configuration loads.
package logging

import (
	"log/slog"
	"os"

	"github.com/duelsim/duelsim/internal/config"
)

// New builds the default logger from the configured format and level.
// Text output carries source locations for development; json is the
// production format and skips them.
func New(cfg config.Provider) {
	format := "text"
	level := slog.LevelInfo
	if cfg != nil {
		format = cfg.LogFormat()
		level = cfg.LogLevel()
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}

	slog.SetDefault(slog.New(handler))
}
