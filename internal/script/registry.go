package script

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/duelsim/duelsim/internal/domain"
)

// EmbeddedProvider is implemented by modules that ship default scripts in
// their binaries.
type EmbeddedProvider interface {
	GetModuleName() string
	GetEmbeddedScripts() map[string]string
}

// Registry holds every loaded script, embedded defaults overlaid by
// external files from the scripts directory. External files win by name;
// deleting one reverts to the embedded version.
type Registry struct {
	mu        sync.RWMutex
	scripts   map[string]map[string]*Script
	providers map[string]EmbeddedProvider

	fs      afero.Fs
	baseDir string

	watcher *fsnotify.Watcher
}

// NewRegistry creates a registry reading external scripts from baseDir on
// the given filesystem.
func NewRegistry(fs afero.Fs, baseDir string) *Registry {
	return &Registry{
		scripts:   make(map[string]map[string]*Script),
		providers: make(map[string]EmbeddedProvider),
		fs:        fs,
		baseDir:   baseDir,
	}
}

// RegisterProvider adds a module's embedded scripts and loads them
// immediately.
func (r *Registry) RegisterProvider(provider EmbeddedProvider) {
	moduleName := provider.GetModuleName()

	r.mu.Lock()
	r.providers[moduleName] = provider
	r.loadEmbeddedLocked(moduleName, provider)
	r.mu.Unlock()

	slog.Debug("registered embedded script provider", "module", moduleName)
}

// LoadScripts loads all embedded defaults, then overlays external files.
func (r *Registry) LoadScripts() error {
	r.mu.Lock()
	for moduleName, provider := range r.providers {
		r.loadEmbeddedLocked(moduleName, provider)
	}
	r.mu.Unlock()

	return r.LoadExternalScripts()
}

// LoadExternalScripts walks the scripts directory
// (<base>/<module>/<name>.tengo) and overrides embedded entries.
func (r *Registry) LoadExternalScripts() error {
	exists, err := afero.DirExists(r.fs, r.baseDir)
	if err != nil || !exists {
		return nil
	}

	entries, err := afero.ReadDir(r.fs, r.baseDir)
	if err != nil {
		return fmt.Errorf("reading scripts dir %s: %w", r.baseDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		moduleName := entry.Name()
		moduleDir := filepath.Join(r.baseDir, moduleName)

		files, err := afero.ReadDir(r.fs, moduleDir)
		if err != nil {
			return fmt.Errorf("reading module scripts dir %s: %w", moduleDir, err)
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".tengo") {
				continue
			}
			scriptName := strings.TrimSuffix(file.Name(), ".tengo")
			if err := r.loadExternal(moduleName, scriptName); err != nil {
				slog.Warn("skipping unreadable external script",
					"module", moduleName, "script", scriptName, "error", err)
			}
		}
	}
	return nil
}

// GetScript retrieves a script by module and name.
func (r *Registry) GetScript(moduleName, scriptName string) (*Script, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if moduleScripts, ok := r.scripts[moduleName]; ok {
		if s, ok := moduleScripts[scriptName]; ok {
			return s, nil
		}
	}
	return nil, NewScriptError(ErrorTypeNotFound, moduleName, scriptName,
		fmt.Sprintf("script %s/%s: %v", moduleName, scriptName, domain.ErrNotFound), domain.ErrNotFound)
}

// ListScripts returns script names by module, sorted for stable output.
func (r *Registry) ListScripts() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.scripts))
	for moduleName, moduleScripts := range r.scripts {
		names := make([]string, 0, len(moduleScripts))
		for name := range moduleScripts {
			names = append(names, name)
		}
		sort.Strings(names)
		out[moduleName] = names
	}
	return out
}

// StartWatcher begins monitoring the external scripts directory and
// reloads changed files. Only works against the real filesystem; with an
// in-memory fs the watcher is a no-op.
func (r *Registry) StartWatcher(ctx context.Context) error {
	if _, ok := r.fs.(*afero.OsFs); !ok {
		slog.Debug("script watcher disabled for non-os filesystem")
		return nil
	}
	exists, err := afero.DirExists(r.fs, r.baseDir)
	if err != nil || !exists {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating script watcher: %w", err)
	}
	r.watcher = watcher

	if err := watcher.Add(r.baseDir); err != nil {
		return fmt.Errorf("watching %s: %w", r.baseDir, err)
	}
	entries, err := afero.ReadDir(r.fs, r.baseDir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				if err := watcher.Add(filepath.Join(r.baseDir, entry.Name())); err != nil {
					slog.Warn("cannot watch module scripts dir", "dir", entry.Name(), "error", err)
				}
			}
		}
	}

	go r.watch(ctx)
	slog.Info("script hot reload active", "dir", r.baseDir)
	return nil
}

// StopWatcher shuts the file watcher down.
func (r *Registry) StopWatcher() {
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

func (r *Registry) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.handleEvent(event)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("script watcher error", "error", err)
		}
	}
}

func (r *Registry) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".tengo") {
		return
	}
	moduleName, scriptName, err := r.parsePath(event.Name)
	if err != nil {
		return
	}

	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		if err := r.loadExternal(moduleName, scriptName); err != nil {
			slog.Warn("hot reload failed, keeping previous version",
				"module", moduleName, "script", scriptName, "error", err)
			return
		}
		slog.Info("script reloaded", "module", moduleName, "script", scriptName)

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		r.revertToEmbedded(moduleName, scriptName)
	}
}

func (r *Registry) parsePath(path string) (moduleName, scriptName string, err error) {
	rel, err := filepath.Rel(r.baseDir, path)
	if err != nil {
		return "", "", err
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("script path %s is not <module>/<name>.tengo", rel)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".tengo"), nil
}

func (r *Registry) loadExternal(moduleName, scriptName string) error {
	path := filepath.Join(r.baseDir, moduleName, scriptName+".tengo")
	content, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return err
	}
	info, err := r.fs.Stat(path)
	modTime := time.Now()
	if err == nil {
		modTime = info.ModTime()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scripts[moduleName] == nil {
		r.scripts[moduleName] = make(map[string]*Script)
	}
	r.scripts[moduleName][scriptName] = &Script{
		ModuleName:   moduleName,
		Name:         scriptName,
		Content:      string(content),
		Source:       SourceExternal,
		LastModified: modTime,
		Checksum:     checksum(string(content)),
	}
	return nil
}

func (r *Registry) revertToEmbedded(moduleName, scriptName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	moduleScripts, ok := r.scripts[moduleName]
	if !ok {
		return
	}
	provider, hasProvider := r.providers[moduleName]
	if hasProvider {
		if content, ok := provider.GetEmbeddedScripts()[scriptName]; ok {
			moduleScripts[scriptName] = &Script{
				ModuleName:   moduleName,
				Name:         scriptName,
				Content:      content,
				Source:       SourceEmbedded,
				LastModified: time.Now(),
				Checksum:     checksum(content),
			}
			slog.Info("external script removed, embedded version restored",
				"module", moduleName, "script", scriptName)
			return
		}
	}
	delete(moduleScripts, scriptName)
}

// loadEmbeddedLocked loads a provider's scripts without displacing
// external overrides. Caller holds the write lock.
func (r *Registry) loadEmbeddedLocked(moduleName string, provider EmbeddedProvider) {
	if r.scripts[moduleName] == nil {
		r.scripts[moduleName] = make(map[string]*Script)
	}
	for name, content := range provider.GetEmbeddedScripts() {
		if existing, ok := r.scripts[moduleName][name]; ok && existing.Source == SourceExternal {
			continue
		}
		r.scripts[moduleName][name] = &Script{
			ModuleName:   moduleName,
			Name:         name,
			Content:      content,
			Source:       SourceEmbedded,
			LastModified: time.Now(),
			Checksum:     checksum(content),
		}
	}
}
