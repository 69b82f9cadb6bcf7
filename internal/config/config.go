package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Provider is the read surface the rest of the application sees. Keeping
// it an interface lets tests swap in fixed values without touching the
// environment.
type Provider interface {
	ServerAddr() string
	ContentDir() string
	ScriptsDir() string
	DataDir() string
	HotReloadScripts() bool

	LogFormat() string
	LogLevel() slog.Level

	DBURL() string
	DBNamespace() string
	DBDatabase() string
	DBUser() string
	DBPass() string

	TracingEnabled() bool
	ZipkinURL() string
}

// Config is the env-backed Provider.
type Config struct {
	serverAddr string
	contentDir string
	scriptsDir string
	dataDir    string
	hotReload  bool

	logFormat string
	logLevel  slog.Level

	dbURL  string
	dbNs   string
	dbDb   string
	dbUser string
	dbPass string

	tracing   bool
	zipkinURL string
}

// New loads configuration from the environment, with a .env file as a
// convenience for development.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}

	return &Config{
		serverAddr: envOr("SERVER_ADDR", ":8080"),
		contentDir: os.Getenv("CONTENT_DIR"),
		scriptsDir: envOr("SCRIPTS_DIR", "scripts"),
		dataDir:    envOr("DATA_DIR", "data"),
		hotReload:  envBool("HOT_RELOAD_SCRIPTS", true),

		logFormat: envOr("LOG_FORMAT", "text"),
		logLevel:  envLevel("LOG_LEVEL", slog.LevelDebug),

		dbURL:  os.Getenv("SURREAL_URL"),
		dbNs:   os.Getenv("SURREAL_NS"),
		dbDb:   os.Getenv("SURREAL_DB"),
		dbUser: os.Getenv("SURREAL_USER"),
		dbPass: os.Getenv("SURREAL_PASS"),

		tracing:   envBool("TRACING_ENABLED", false),
		zipkinURL: envOr("ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}
}

func (c *Config) ServerAddr() string     { return c.serverAddr }
func (c *Config) ContentDir() string     { return c.contentDir }
func (c *Config) ScriptsDir() string     { return c.scriptsDir }
func (c *Config) DataDir() string        { return c.dataDir }
func (c *Config) HotReloadScripts() bool { return c.hotReload }

func (c *Config) DBURL() string       { return c.dbURL }
func (c *Config) DBNamespace() string { return c.dbNs }
func (c *Config) DBDatabase() string  { return c.dbDb }
func (c *Config) DBUser() string      { return c.dbUser }
func (c *Config) DBPass() string      { return c.dbPass }

func (c *Config) TracingEnabled() bool { return c.tracing }
func (c *Config) ZipkinURL() string    { return c.zipkinURL }

func (c *Config) LogFormat() string    { return c.logFormat }
func (c *Config) LogLevel() slog.Level { return c.logLevel }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return level
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
