// Package scripts ships the match module's default DSL programs. They are
// embedded in the binary and can be overridden by files under
// scripts/match/ in the configured scripts directory.
package scripts

import (
	"embed"
	"strings"
)

//go:embed *.tengo
var files embed.FS

// Provider exposes the embedded scripts to the script engine.
type Provider struct{}

// GetModuleName returns the script module these programs belong to.
func (Provider) GetModuleName() string {
	return "match"
}

// GetEmbeddedScripts returns embedded script sources keyed by name.
func (Provider) GetEmbeddedScripts() map[string]string {
	out := make(map[string]string)
	entries, err := files.ReadDir(".")
	if err != nil {
		return out
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tengo") {
			continue
		}
		data, err := files.ReadFile(entry.Name())
		if err != nil {
			continue
		}
		out[strings.TrimSuffix(entry.Name(), ".tengo")] = string(data)
	}
	return out
}
