package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Forms  FormsConfig  `yaml:"forms"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AuthConfig represents session token configuration
type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	CookieName string `yaml:"cookie_name"`
	SessionTTL int    `yaml:"session_ttl"` // seconds
}

// FormsConfig controls the submission flow of the login and register views
type FormsConfig struct {
	SubmitDelayMs int    `yaml:"submit_delay_ms"`
	Redirect      string `yaml:"redirect"`
}

// LogConfig selects the log handler and where it writes
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // pretty, json, text or empty for auto
	Output string `yaml:"output"` // stderr, stdout or a file path
}

// SubmitDelay returns the placeholder delay as a duration
func (f FormsConfig) SubmitDelay() time.Duration {
	return time.Duration(f.SubmitDelayMs) * time.Millisecond
}

// TTL returns the session lifetime as a duration
func (a AuthConfig) TTL() time.Duration {
	return time.Duration(a.SessionTTL) * time.Second
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Auth: AuthConfig{
			JWTSecret:  "account-forms-secret-key-change-me",
			CookieName: "token",
			SessionTTL: 86400,
		},
		Forms: FormsConfig{
			SubmitDelayMs: 1500,
			Redirect:      "/dashboard",
		},
		Log: LogConfig{
			Level:  "info",
			Output: "stderr",
		},
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// Override with environment variables
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides overrides configuration with environment variables
func applyEnvOverrides(cfg *Config) error {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		cfg.Server.Port = n
	}
	if jwtSecret := os.Getenv("AUTH_JWT_SECRET"); jwtSecret != "" {
		cfg.Auth.JWTSecret = jwtSecret
	}
	if cookie := os.Getenv("AUTH_COOKIE_NAME"); cookie != "" {
		cfg.Auth.CookieName = cookie
	}
	if delay := os.Getenv("FORMS_SUBMIT_DELAY_MS"); delay != "" {
		n, err := strconv.Atoi(delay)
		if err != nil {
			return fmt.Errorf("FORMS_SUBMIT_DELAY_MS: %w", err)
		}
		cfg.Forms.SubmitDelayMs = n
	}
	if redirect := os.Getenv("FORMS_REDIRECT"); redirect != "" {
		cfg.Forms.Redirect = redirect
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if output := os.Getenv("LOG_OUTPUT"); output != "" {
		cfg.Log.Output = output
	}
	return nil
}

// Validate reports the first unusable setting
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	case c.Auth.JWTSecret == "":
		return errors.New("auth.jwt_secret must not be empty")
	case c.Auth.CookieName == "":
		return errors.New("auth.cookie_name must not be empty")
	case c.Auth.SessionTTL <= 0:
		return errors.New("auth.session_ttl must be positive")
	case c.Forms.SubmitDelayMs < 0:
		return errors.New("forms.submit_delay_ms must not be negative")
	case c.Forms.Redirect == "" || c.Forms.Redirect[0] != '/':
		return fmt.Errorf("forms.redirect must be an absolute path: %q", c.Forms.Redirect)
	case strings.HasPrefix(c.Forms.Redirect, "//") || strings.HasPrefix(c.Forms.Redirect, `/\`):
		// browsers resolve both as a scheme-relative URL on another host
		return fmt.Errorf("forms.redirect must stay on this site: %q", c.Forms.Redirect)
	}
	return nil
}
