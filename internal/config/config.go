package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// FallbackModel is the fixed secondary model tried when the primary fails.
	FallbackModel = "glm-4-flash"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	environmentProduction = "production"
)

// Config holds the application configuration.
// The service is stateless: nothing here outlives a single request.
type Config struct {
	Environment string `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `yaml:"log_level" envconfig:"LOG_LEVEL" default:"info"`

	Server        ServerConfig        `yaml:"server"`
	Upstream      UpstreamConfig      `yaml:"upstream"`
	Budget        BudgetConfig        `yaml:"budget"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `yaml:"port" envconfig:"PORT" default:"8080"`
	CORSAllowOrigin string        `yaml:"cors_allow_origin" envconfig:"CORS_ALLOW_ORIGIN" default:"*"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"75s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	Region          string        `yaml:"region" envconfig:"REGION"`
	// RawFallbackPoster renders unparseable model text as a minimal poster
	// instead of failing the request.
	RawFallbackPoster bool `yaml:"raw_fallback_poster" envconfig:"RAW_FALLBACK_POSTER" default:"false"`
}

// UpstreamConfig describes the chat-completions provider.
type UpstreamConfig struct {
	Provider      string  `yaml:"provider" envconfig:"UPSTREAM_PROVIDER" default:"openai"`
	APIKey        string  `yaml:"api_key" envconfig:"ZHIPU_API_KEY"`
	GeminiAPIKey  string  `yaml:"gemini_api_key" envconfig:"GEMINI_API_KEY"`
	BaseURL       string  `yaml:"base_url" envconfig:"UPSTREAM_BASE_URL" default:"https://open.bigmodel.cn/api/paas/v4/"`
	Model         string  `yaml:"model" envconfig:"MODEL_NAME" default:"glm-4"`
	FallbackModel string  `yaml:"fallback_model" ignored:"true"`
	Temperature   float64 `yaml:"temperature" envconfig:"UPSTREAM_TEMPERATURE" default:"0.7"`
}

// BudgetConfig holds the time budget of one generation request.
type BudgetConfig struct {
	Overall         time.Duration `yaml:"overall" envconfig:"BUDGET_OVERALL" default:"55s"`
	Slice           time.Duration `yaml:"slice" envconfig:"BUDGET_SLICE" default:"30s"`
	MinPrimarySlice time.Duration `yaml:"min_primary_slice" envconfig:"BUDGET_MIN_PRIMARY_SLICE" default:"8s"`
	FallbackReserve time.Duration `yaml:"fallback_reserve" envconfig:"BUDGET_FALLBACK_RESERVE" default:"12s"`
	MinFallback     time.Duration `yaml:"min_fallback" envconfig:"BUDGET_MIN_FALLBACK" default:"7s"`
	FallbackMargin  time.Duration `yaml:"fallback_margin" envconfig:"BUDGET_FALLBACK_MARGIN" default:"2s"`
}

// ObservabilityConfig holds Sentry, Langfuse and CloudWatch settings.
type ObservabilityConfig struct {
	SentryDSN         string `yaml:"sentry_dsn" envconfig:"SENTRY_DSN"`
	LangfusePublicKey string `yaml:"langfuse_public_key" envconfig:"LANGFUSE_PUBLIC_KEY"`
	LangfuseSecretKey string `yaml:"langfuse_secret_key" envconfig:"LANGFUSE_SECRET_KEY"`
	LangfuseHost      string `yaml:"langfuse_host" envconfig:"LANGFUSE_HOST" default:"https://cloud.langfuse.com"`
	LangfuseEnabled   bool   `yaml:"langfuse_enabled" envconfig:"LANGFUSE_ENABLED" default:"false"`
	CloudWatchEnabled bool   `yaml:"cloudwatch_enabled" envconfig:"CLOUDWATCH_ENABLED" default:"true"`
}

// Load reads configuration from the environment and then from an optional
// YAML file. Keys present in the file take precedence over the environment,
// since envconfig fills every unset field with its default.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if cfg.Upstream.FallbackModel == "" {
		cfg.Upstream.FallbackModel = FallbackModel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would make the service misbehave.
// A missing API key is not checked here: it is reported per request.
func (c *Config) Validate() error {
	switch c.Upstream.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown upstream provider %q (allowed: %s, %s)",
			c.Upstream.Provider, ProviderOpenAI, ProviderGemini)
	}
	if c.Upstream.Model == "" {
		return errors.New("upstream model is required")
	}
	b := c.Budget
	if b.Overall <= 0 || b.Slice <= 0 {
		return errors.New("budget overall and slice must be positive")
	}
	if b.MinPrimarySlice > b.Slice {
		return fmt.Errorf("budget min_primary_slice (%s) exceeds slice (%s)", b.MinPrimarySlice, b.Slice)
	}
	if b.MinFallback < 0 || b.FallbackMargin < 0 || b.FallbackReserve < 0 {
		return errors.New("budget margins must not be negative")
	}
	return nil
}

// ActiveAPIKey returns the credential for the configured provider.
func (c *Config) ActiveAPIKey() string {
	if c.Upstream.Provider == ProviderGemini {
		return c.Upstream.GeminiAPIKey
	}
	return c.Upstream.APIKey
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == environmentProduction
}
