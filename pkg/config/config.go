package config

import (
	"time"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/processing/conversation"
)

// Config is the root configuration structure.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Upstream configures the inference provider connection.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Models configures the routing chain.
	Models ModelsConfig `yaml:"models"`

	// Truncation configures conversation history truncation.
	Truncation TruncationConfig `yaml:"truncation"`

	// Streaming configures SSE responses.
	Streaming StreamingConfig `yaml:"streaming"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit configures the request ledger.
	Audit AuditConfig `yaml:"audit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the host:port the server binds to.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading the full request, including the body.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response. Generous because streaming
	// responses stay open for the whole upstream emission.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown draining.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes caps inbound request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS configures cross-origin access.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig mirrors the middleware CORS settings.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// UpstreamConfig contains the inference provider connection settings.
type UpstreamConfig struct {
	// BaseURL is the provider API root, e.g. "https://api.deepseek.com".
	BaseURL string `yaml:"base_url"`

	// APIKey is the provider credential. Usually supplied via
	// DSPROXY_UPSTREAM_API_KEY rather than the file.
	APIKey string `yaml:"api_key"`

	// Timeout bounds one upstream call. Generous to accommodate very large
	// contexts.
	Timeout time.Duration `yaml:"timeout"`
}

// ModelsConfig contains the model routing chain.
type ModelsConfig struct {
	// Primary is the model every chain starts from at boot.
	Primary string `yaml:"primary"`

	// Fallbacks are tried in declared order when the current model fails.
	Fallbacks []string `yaml:"fallbacks"`

	// ShowReasoning fuses upstream reasoning output into the visible
	// content between <think> markers.
	ShowReasoning bool `yaml:"show_reasoning"`
}

// TruncationConfig controls conversation history truncation.
type TruncationConfig struct {
	// Enabled turns tiered truncation on. Off means histories pass through
	// unbounded.
	Enabled bool `yaml:"enabled"`

	// Tiers overrides the built-in tier table when non-empty.
	Tiers []conversation.Tier `yaml:"tiers"`
}

// StreamingConfig controls SSE responses.
type StreamingConfig struct {
	// Enabled allows stream:true requests to receive SSE. When off they are
	// served as buffered completions.
	Enabled bool `yaml:"enabled"`
}

// TelemetryConfig contains logging and metrics settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AuditConfig configures the SQLite request ledger.
type AuditConfig struct {
	// Enabled turns the ledger on.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// RetentionDays is how long records are kept. Zero disables pruning.
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for the retention job.
	PruneSchedule string `yaml:"prune_schedule"`
}
