package config

import "log/slog"

// Static is a fixed-value Provider for tests and embedded setups.
type Static struct {
	Addr       string
	Content    string
	Scripts    string
	Data       string
	HotReload  bool
	URL        string
	Namespace  string
	Database   string
	User       string
	Pass       string
	Tracing    bool
	ZipkinAddr string
	Format     string
	Level      slog.Level
}

func (s Static) ServerAddr() string     { return s.Addr }
func (s Static) ContentDir() string     { return s.Content }
func (s Static) ScriptsDir() string     { return s.Scripts }
func (s Static) DataDir() string        { return s.Data }
func (s Static) HotReloadScripts() bool { return s.HotReload }
func (s Static) DBURL() string          { return s.URL }
func (s Static) DBNamespace() string    { return s.Namespace }
func (s Static) DBDatabase() string     { return s.Database }
func (s Static) DBUser() string         { return s.User }
func (s Static) DBPass() string         { return s.Pass }
func (s Static) TracingEnabled() bool   { return s.Tracing }
func (s Static) ZipkinURL() string      { return s.ZipkinAddr }
func (s Static) LogFormat() string      { return s.Format }
func (s Static) LogLevel() slog.Level   { return s.Level }
