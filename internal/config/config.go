// Package config provides configuration loading for interviewd.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root configuration for the interviewd daemon.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Mongo     MongoConfig     `koanf:"mongo"`
	Auth      AuthConfig      `koanf:"auth"`
	Interview InterviewConfig `koanf:"interview"`
	Log       LogConfig       `koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// MongoConfig holds document-store connection settings.
type MongoConfig struct {
	URI        Secret   `koanf:"uri"`
	Database   string   `koanf:"database"`
	MaxRetries int      `koanf:"max_retries"`
	RetryDelay Duration `koanf:"retry_delay"`
}

// AuthConfig holds the authentication gate settings.
type AuthConfig struct {
	// JWTSecret signs and verifies bearer tokens (HMAC).
	JWTSecret Secret `koanf:"jwt_secret"`
	// APIKey is the static system key accepted via the x-api-key header.
	APIKey Secret `koanf:"api_key"`
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL Duration `koanf:"token_ttl"`
}

// InterviewConfig holds the generative-AI collaborator settings.
type InterviewConfig struct {
	BaseURL     string  `koanf:"base_url"`
	Model       string  `koanf:"model"`
	APIKey      Secret  `koanf:"api_key"`
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "mr_interview"
	}
	if cfg.Mongo.MaxRetries == 0 {
		cfg.Mongo.MaxRetries = 3
	}
	if cfg.Mongo.RetryDelay == 0 {
		cfg.Mongo.RetryDelay = Duration(time.Second)
	}

	// Tokens live for a week, matching what the web client expects.
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = Duration(7 * 24 * time.Hour)
	}

	if cfg.Interview.BaseURL == "" {
		cfg.Interview.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	if cfg.Interview.Model == "" {
		cfg.Interview.Model = "gemini-1.5-flash"
	}
	if cfg.Interview.Temperature == 0 {
		cfg.Interview.Temperature = 0.7
	}
	if cfg.Interview.MaxTokens == 0 {
		cfg.Interview.MaxTokens = 150
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is outside 1-65535
//   - Shutdown timeout is not positive
//   - Mongo URI is missing
//   - JWT secret or API key is missing
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if !c.Mongo.URI.IsSet() {
		return errors.New("mongo uri is required")
	}
	if c.Mongo.MaxRetries < 0 {
		return errors.New("mongo max retries cannot be negative")
	}

	if !c.Auth.JWTSecret.IsSet() {
		return errors.New("auth jwt secret is required")
	}
	if !c.Auth.APIKey.IsSet() {
		return errors.New("auth api key is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth token ttl must be positive")
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q (must be json or console)", c.Log.Format)
	}

	return nil
}
