package app

import (
	"github.com/duelsim/duelsim/internal/module"
	"github.com/duelsim/duelsim/internal/modules/announcer"
	"github.com/duelsim/duelsim/internal/modules/codex"
	"github.com/duelsim/duelsim/internal/modules/match"
)

// NewModules returns the active application modules in boot order. This
// is the single source of truth for which features are enabled.
func NewModules() []module.Module {
	return []module.Module{
		codex.New(),
		match.New(),
		announcer.New(),
	}
}
