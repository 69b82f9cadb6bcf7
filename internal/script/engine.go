package script

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/duelsim/duelsim/internal/config"
)

// Engine is the DSL execution service: a registry of loaded scripts plus
// a tengo runner. Modules execute their event processors through it, and
// the content layer borrows Validate for card descriptors.
type Engine struct {
	registry *Registry
	runner   *TengoRunner
	fs       afero.Fs
}

// Dependencies holds what the Engine needs to operate.
type Dependencies struct {
	Config config.Provider
	Fs     afero.Fs
}

// NewEngine creates a script engine reading external scripts from the
// configured directory.
func NewEngine(deps Dependencies) *Engine {
	fs := deps.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	scriptsDir := "scripts"
	if deps.Config != nil {
		scriptsDir = deps.Config.ScriptsDir()
	}
	return &Engine{
		registry: NewRegistry(fs, scriptsDir),
		runner:   NewTengoRunner(),
		fs:       fs,
	}
}

// Initialize loads all registered scripts and, when enabled, starts the
// hot-reload watcher.
func (e *Engine) Initialize(ctx context.Context, hotReload bool) error {
	if err := e.registry.LoadScripts(); err != nil {
		return fmt.Errorf("loading scripts: %w", err)
	}

	if hotReload {
		if err := e.registry.StartWatcher(ctx); err != nil {
			slog.Error("script watcher failed to start", "error", err)
		}
	}

	total := 0
	for _, names := range e.registry.ListScripts() {
		total += len(names)
	}
	slog.Info("script engine initialized", "scripts", total)
	return nil
}

// RegisterProvider adds a module's embedded scripts.
func (e *Engine) RegisterProvider(provider EmbeddedProvider) {
	e.registry.RegisterProvider(provider)
}

// Execute runs a named script with the given input.
func (e *Engine) Execute(ctx context.Context, moduleName, scriptName string, input *Input) (*Output, error) {
	s, err := e.registry.GetScript(moduleName, scriptName)
	if err != nil {
		return nil, err
	}
	out, err := e.runner.Run(ctx, s, input)
	if err != nil {
		return nil, err
	}
	slog.Debug("script executed",
		"module", moduleName,
		"script", scriptName,
		"execution_time", out.Metrics.ExecutionTime,
	)
	return out, nil
}

// GetScript retrieves a script by module and name.
func (e *Engine) GetScript(moduleName, scriptName string) (*Script, error) {
	return e.registry.GetScript(moduleName, scriptName)
}

// ListScripts returns loaded script names by module.
func (e *Engine) ListScripts() map[string][]string {
	return e.registry.ListScripts()
}

// ValidateSource compile-checks a standalone DSL program, such as a card's
// skill descriptor, without loading it into the registry.
func (e *Engine) ValidateSource(moduleName, scriptName, content string) error {
	return e.runner.Validate(&Script{
		ModuleName: moduleName,
		Name:       scriptName,
		Content:    content,
	})
}

// ExecuteSource runs an unregistered DSL program, such as a skill's
// effects descriptor carried on a card, under the same limits as
// registry scripts.
func (e *Engine) ExecuteSource(ctx context.Context, moduleName, scriptName, content string, input *Input) (*Output, error) {
	return e.runner.Run(ctx, &Script{
		ModuleName: moduleName,
		Name:       scriptName,
		Content:    content,
		Source:     SourceEmbedded,
	}, input)
}

// ExtractDefaults writes embedded scripts out to the scripts directory so
// operators have files to edit. Existing files are left alone.
func (e *Engine) ExtractDefaults(targetDir string) error {
	for moduleName, names := range e.registry.ListScripts() {
		moduleDir := filepath.Join(targetDir, moduleName)
		if err := e.fs.MkdirAll(moduleDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", moduleDir, err)
		}
		for _, name := range names {
			s, err := e.registry.GetScript(moduleName, name)
			if err != nil || s.Source != SourceEmbedded {
				continue
			}
			path := filepath.Join(moduleDir, name+".tengo")
			if exists, _ := afero.Exists(e.fs, path); exists {
				continue
			}
			if err := afero.WriteFile(e.fs, path, []byte(s.Content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
		}
	}
	return nil
}

// Shutdown stops the watcher.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.registry.StopWatcher()
	return nil
}
