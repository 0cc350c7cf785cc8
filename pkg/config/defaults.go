package config

import (
	"time"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/audit"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/processing/conversation"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/providers/deepseek"
)

// Default values applied by ApplyDefaults.
const (
	DefaultListenAddress   = ":8080"
	DefaultReadTimeout     = 1 * time.Minute
	DefaultWriteTimeout    = 10 * time.Minute
	DefaultIdleTimeout     = 2 * time.Minute
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = 10 * 1024 * 1024

	DefaultBaseURL      = "https://api.deepseek.com"
	DefaultPrimaryModel = "deepseek-chat"

	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultMetricsPath = "/metrics"

	DefaultAuditPath     = "data/audit.db"
	DefaultRetentionDays = 30
)

// NewDefaultConfig returns a fully-defaulted configuration.
func NewDefaultConfig() *Config {
	cfg := newSeedConfig()
	ApplyDefaults(cfg)
	return cfg
}

// newSeedConfig pre-sets the booleans that default to true. The loader
// unmarshals YAML over this seed, so an absent key keeps the default while
// an explicit false disables the feature.
func newSeedConfig() *Config {
	cfg := &Config{}
	cfg.Server.CORS.Enabled = true
	cfg.Models.ShowReasoning = true
	cfg.Truncation.Enabled = true
	cfg.Streaming.Enabled = true
	cfg.Telemetry.Metrics.Enabled = true
	return cfg
}

// ApplyDefaults fills every zero-valued field with its default. Booleans
// that default to true are seeded by newSeedConfig before unmarshalling,
// so a false here means explicitly disabled.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.Server.CORS.AllowedMethods) == 0 {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.Server.CORS.AllowedHeaders) == 0 {
		cfg.Server.CORS.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = 3600
	}

	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultBaseURL
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = deepseek.DefaultTimeout
	}

	if cfg.Models.Primary == "" {
		cfg.Models.Primary = DefaultPrimaryModel
	}

	if len(cfg.Truncation.Tiers) == 0 {
		cfg.Truncation.Tiers = conversation.DefaultTiers()
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = DefaultAuditPath
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = DefaultRetentionDays
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = audit.DefaultPruneSchedule
	}
}
