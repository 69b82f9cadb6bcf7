package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duelsim/duelsim/internal/config"
)

func TestNew_AppliesConfiguredLevel(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	New(config.Static{Format: "json", Level: slog.LevelWarn})

	ctx := context.Background()
	assert.False(t, slog.Default().Enabled(ctx, slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelWarn))
	assert.IsType(t, &slog.JSONHandler{}, slog.Default().Handler())
}

func TestNew_DefaultsToText(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	New(config.Static{})

	assert.IsType(t, &slog.TextHandler{}, slog.Default().Handler())
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
}
