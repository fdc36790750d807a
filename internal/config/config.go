package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the cashier terminal.
type Config struct {
	AppPort    string        `yaml:"app_port"`
	MerchantID string        `yaml:"merchant_id"`
	Backend    BackendConfig `yaml:"backend"`
	Redis      RedisConfig   `yaml:"redis"`
	Payment    PaymentConfig `yaml:"payment"`
}

// BackendConfig points the terminal at the merchant backend REST API.
type BackendConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIToken string `yaml:"api_token"`
}

// RedisConfig holds the push-channel connection settings.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// PaymentConfig holds payment session settings.
type PaymentConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the QR expiry countdown as a duration.
func (p PaymentConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Load builds the configuration from an optional YAML file overridden by
// environment variables. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := &Config{
		AppPort: "8080",
		Redis:   RedisConfig{URL: "redis://localhost:6379"},
		Payment: PaymentConfig{TimeoutSeconds: 300},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend base_url is required (set BACKEND_URL)")
	}
	if cfg.MerchantID == "" {
		return nil, fmt.Errorf("merchant_id is required (set MERCHANT_ID)")
	}
	if cfg.Payment.TimeoutSeconds <= 0 {
		cfg.Payment.TimeoutSeconds = 300
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APP_PORT"); v != "" {
		cfg.AppPort = v
	}
	if v := os.Getenv("MERCHANT_ID"); v != "" {
		cfg.MerchantID = v
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("BACKEND_API_TOKEN"); v != "" {
		cfg.Backend.APIToken = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("PAYMENT_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Payment.TimeoutSeconds = n
		}
	}
}
