package adapter

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/n0madic/go-responses-adapter/upstream"
)

// Config is the YAML-backed client configuration. ${VAR} references in the
// file are expanded from the environment before parsing, so keys stay out of
// config files.
type Config struct {
	BaseURL   string  `yaml:"base_url"`
	APIKey    string  `yaml:"api_key"`
	Model     string  `yaml:"model"`
	Timeout   string  `yaml:"timeout"`    // e.g. "30s", empty keeps the default
	RateLimit float64 `yaml:"rate_limit"` // requests per second, 0 disables
	Burst     int     `yaml:"burst"`
	Verbose   bool    `yaml:"verbose"`
	UseSDK    bool    `yaml:"use_sdk"` // non-stream calls via the official SDK

	timeout time.Duration
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.timeout = d
	}
	if c.RateLimit > 0 && c.Burst <= 0 {
		c.Burst = 1
	}
	return nil
}

// NewFromConfig builds a Provider from a validated Config.
func NewFromConfig(cfg *Config) *Provider {
	clientOpts := []upstream.Option{
		upstream.WithAPIKey(cfg.APIKey),
		upstream.WithVerbose(cfg.Verbose),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, upstream.WithBaseURL(cfg.BaseURL))
	}
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, upstream.WithTimeout(cfg.timeout))
	}
	if cfg.RateLimit > 0 {
		clientOpts = append(clientOpts, upstream.WithRateLimit(cfg.RateLimit, cfg.Burst))
	}

	opts := []ProviderOption{
		WithClient(upstream.NewClient(clientOpts...)),
		WithVerboseLogging(cfg.Verbose),
	}
	if cfg.UseSDK {
		opts = append(opts, WithSDKClient(upstream.NewSDKClient(cfg.APIKey, cfg.BaseURL)))
	}
	return New(cfg.Model, opts...)
}
