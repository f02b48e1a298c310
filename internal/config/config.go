// Package config loads environment-driven configuration and the step
// catalog. API and stream base URLs are required; everything else has
// defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	App     AppConfig
	API     APIConfig
	Stream  StreamConfig
	Export  ExportConfig
	Journal JournalConfig
}

// AppConfig contains process-level settings.
type AppConfig struct {
	Environment string // "development" or "production"
	LogLevel    string
}

// APIConfig contains settings for the analysis backend API.
type APIConfig struct {
	BaseURL       string
	UploadTimeout time.Duration
}

// StreamConfig contains settings for the live event stream.
type StreamConfig struct {
	BaseURL string
	// MaxConnectFailures is how many consecutive connection failures are
	// tolerated before the adapter reports disconnected (it keeps retrying
	// quietly afterwards).
	MaxConnectFailures int
	MaxBackoff         time.Duration
}

// ExportConfig contains settings for the report export gateway.
type ExportConfig struct {
	ListenAddr string
	// RenderURL is the external HTML-to-PDF rendering service.
	RenderURL string
}

// JournalConfig contains settings for the raw-event journal.
type JournalConfig struct {
	Enabled bool
	Dir     string
}

// Load reads configuration from the environment, consulting a .env file if
// present. Returns an error when a required variable is missing.
func Load() (*Config, error) {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	apiBase := os.Getenv("API_BASE_URL")
	if apiBase == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	streamBase := os.Getenv("STREAM_BASE_URL")
	if streamBase == "" {
		return nil, fmt.Errorf("STREAM_BASE_URL is required")
	}

	cfg := &Config{
		App: AppConfig{
			Environment: envOr("APP_ENV", "development"),
			LogLevel:    envOr("LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:       apiBase,
			UploadTimeout: envDuration("UPLOAD_TIMEOUT", 2*time.Minute),
		},
		Stream: StreamConfig{
			BaseURL:            streamBase,
			MaxConnectFailures: envInt("STREAM_MAX_CONNECT_FAILURES", 3),
			MaxBackoff:         envDuration("STREAM_MAX_BACKOFF", 30*time.Second),
		},
		Export: ExportConfig{
			ListenAddr: envOr("EXPORT_LISTEN_ADDR", "127.0.0.1:8089"),
			RenderURL:  envOr("RENDER_SERVICE_URL", ""),
		},
		Journal: JournalConfig{
			Enabled: envOr("JOURNAL_ENABLED", "true") != "false",
			Dir:     envOr("JOURNAL_DIR", "./data/journal"),
		},
	}
	return cfg, nil
}

// EnsureDirectories creates the directories the configuration points at.
func (c *Config) EnsureDirectories() error {
	if !c.Journal.Enabled {
		return nil
	}
	return os.MkdirAll(c.Journal.Dir, 0o755)
}

// IsProduction reports production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
