package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIKeyEnv = "EMAIL_REWRITER_API_KEY"
	// LegacyAPIKeyEnv is consulted when the configured variable is empty.
	LegacyAPIKeyEnv = "COHERE_KEY"
)

type Config struct {
	Server struct {
		Port              int  `yaml:"port"`
		ValidateOnRewrite bool `yaml:"validate_on_rewrite"`
	} `yaml:"server"`
	OpenAI struct {
		Provider            string `yaml:"provider"`
		BaseURL             string `yaml:"base_url"`
		APIKeyEnv           string `yaml:"api_key_env"`
		APIKey              string `yaml:"-"`
		RequestTimeoutSec   int    `yaml:"request_timeout_sec"`
		MaxRetries          int    `yaml:"max_retries"`
		RetryBackoffSec     int    `yaml:"retry_backoff_sec"`
		RateLimitMarker     string `yaml:"rate_limit_marker"`
		ValidationModel     string `yaml:"validation_model"`
		ValidationMaxTokens int    `yaml:"validation_max_tokens"`
	} `yaml:"openai"`
	Rewrite struct {
		Temperature float64 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"rewrite"`
	Models []string  `yaml:"models"`
	Log    LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Load reads the YAML file at path and fills defaults. An empty path yields a
// config built from defaults and the environment only.
func Load(path string) (Config, error) {
	var cfg Config
	cfg.Server.ValidateOnRewrite = true
	cfg.Rewrite.Temperature = -1
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyDefaults(&cfg)
	cfg.OpenAI.APIKey = lookupAPIKey(cfg.OpenAI.APIKeyEnv)
	return cfg, cfg.Validate()
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.OpenAI.Provider == "" {
		cfg.OpenAI.Provider = "Cohere"
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.cohere.ai/compatibility/v1"
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.OpenAI.RequestTimeoutSec == 0 {
		cfg.OpenAI.RequestTimeoutSec = 120
	}
	if cfg.OpenAI.MaxRetries == 0 {
		cfg.OpenAI.MaxRetries = 3
	}
	if cfg.OpenAI.RetryBackoffSec == 0 {
		cfg.OpenAI.RetryBackoffSec = 21
	}
	if cfg.OpenAI.RateLimitMarker == "" {
		cfg.OpenAI.RateLimitMarker = "rate limit"
	}
	if cfg.OpenAI.ValidationModel == "" {
		cfg.OpenAI.ValidationModel = "command"
	}
	if cfg.OpenAI.ValidationMaxTokens == 0 {
		cfg.OpenAI.ValidationMaxTokens = 5
	}
	if cfg.Rewrite.Temperature < 0 {
		cfg.Rewrite.Temperature = 0.7
	}
	if cfg.Rewrite.MaxTokens == 0 {
		cfg.Rewrite.MaxTokens = 1000
	}
	if len(cfg.Models) == 0 {
		cfg.Models = []string{"command", "command-light"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

func lookupAPIKey(envName string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return os.Getenv(LegacyAPIKeyEnv)
}

func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: server.port %d out of range", c.Server.Port)
	}
	if c.OpenAI.MaxRetries < 0 {
		return fmt.Errorf("config error: openai.max_retries must be non-negative")
	}
	if c.OpenAI.RetryBackoffSec < 0 {
		return fmt.Errorf("config error: openai.retry_backoff_sec must be non-negative")
	}
	if c.Rewrite.Temperature > 1 {
		return fmt.Errorf("config error: rewrite.temperature must be within [0,1]")
	}
	if c.Rewrite.MaxTokens < 0 {
		return fmt.Errorf("config error: rewrite.max_tokens must be positive")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config error: log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.OpenAI.RequestTimeoutSec) * time.Second
}

func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.OpenAI.RetryBackoffSec) * time.Second
}
