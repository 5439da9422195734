package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton, kept for packages that cannot take injected config.
var globalConfig *Config

// Config holds all environment backed configuration for chat-api.
type Config struct {
	// HTTP Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9091"`
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Auth
	JWTSecret string `env:"JWT_SECRET,notEmpty"`
	Issuer    string `env:"ISSUER" envDefault:"agenthub"`

	// Credential vault. EncryptionKey is the active secret; previous secrets
	// remain usable for decryption after a rotation.
	EncryptionKey      string   `env:"ENCRYPTION_KEY,notEmpty"`
	PreviousEncryption []string `env:"PREVIOUS_ENCRYPTION_KEYS" envSeparator:","`

	// Upstream providers
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	AnthropicBaseURL string        `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com"`
	UpstreamTimeout  time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"120s"`
	MockLatency      time.Duration `env:"MOCK_LATENCY" envDefault:"1s"`

	// Retention sweeper
	RetentionSweepEnabled bool `env:"RETENTION_SWEEP_ENABLED" envDefault:"true"`
	RetentionSweepHour    int  `env:"RETENTION_SWEEP_HOUR" envDefault:"3"`

	// Observability / Logging
	ServiceName string `env:"SERVICE_NAME" envDefault:"chat-api"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`

	// Features
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// Seed tenant. When set, a free-plan tenant with this public id is
	// created at startup if it does not exist yet.
	BootstrapTenantID   string `env:"BOOTSTRAP_TENANT_ID"`
	BootstrapTenantName string `env:"BOOTSTRAP_TENANT_NAME"`

	// Internal
	EnvReloadedAt time.Time
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if len(cfg.EncryptionKey) < 16 {
		return nil, errors.New("ENCRYPTION_KEY must be at least 16 characters")
	}

	if _, err := url.ParseRequestURI(cfg.OpenAIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid OPENAI_BASE_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.AnthropicBaseURL); err != nil {
		return nil, fmt.Errorf("invalid ANTHROPIC_BASE_URL: %w", err)
	}

	if cfg.UpstreamTimeout <= 0 {
		return nil, errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	if cfg.RetentionSweepHour < 0 || cfg.RetentionSweepHour > 23 {
		return nil, fmt.Errorf("RETENTION_SWEEP_HOUR out of range: %d", cfg.RetentionSweepHour)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.EnvReloadedAt = time.Now()

	globalConfig = cfg

	return cfg, nil
}

// GetGlobal returns the global config instance.
// Deprecated: prefer dependency injection with Load().
func GetGlobal() *Config {
	return globalConfig
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
