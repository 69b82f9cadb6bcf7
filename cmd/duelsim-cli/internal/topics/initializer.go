// Package topics backs the CLI's topic discovery commands.
package topics

import (
	"io"
	"log"
	"log/slog"

	"github.com/duelsim/duelsim/internal/websocket"

	// Module packages define their events at package level; importing
	// them is what registers their topics with the default manager.
	_ "github.com/duelsim/duelsim/internal/modules/announcer"
	_ "github.com/duelsim/duelsim/internal/modules/match"
)

// Initialize quiets logging and makes sure every topic is registered
// with the default manager before the CLI reads it.
func Initialize() error {
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return websocket.RegisterTopics()
}
