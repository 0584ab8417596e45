package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton, set by Load. Handlers receive the config by injection;
// the singleton exists for init-order-sensitive callers only.
var globalConfig *Config

// Config holds all environment backed configuration for omnichat.
type Config struct {
	// HTTP Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9091"`
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Upstream calls. Per-call context deadlines, never a client-wide
	// timeout, which would cut off long streams.
	StreamTimeout          time.Duration `env:"STREAM_TIMEOUT" envDefault:"5m"`
	ImageGenerationTimeout time.Duration `env:"IMAGE_GENERATION_TIMEOUT" envDefault:"120s"`

	// Secrets
	CredentialSecret string `env:"CREDENTIAL_ENCRYPTION_SECRET" envDefault:"omnichat-credential-secret"`

	// Blob storage
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	UploadBaseURL string `env:"UPLOAD_BASE_URL" envDefault:"/uploads"`

	// Observability / Logging
	ServiceName string `env:"SERVICE_NAME" envDefault:"omnichat"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`

	// Features
	AutoMigrate   bool `env:"AUTO_MIGRATE" envDefault:"true"`
	SeedPlatforms bool `env:"SEED_PLATFORMS" envDefault:"true"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.UploadBaseURL = strings.TrimSuffix(cfg.UploadBaseURL, "/")
	if cfg.UploadBaseURL == "" {
		return nil, fmt.Errorf("UPLOAD_BASE_URL must not be empty")
	}

	globalConfig = cfg

	return cfg, nil
}

// GetGlobal returns the global config instance.
// Deprecated: Use dependency injection with Load() instead.
func GetGlobal() *Config {
	return globalConfig
}
