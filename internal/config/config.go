// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the service configuration. Values can come from a JSON
// file, from environment variables, or from CLI flags; environment variables
// win over the file, flags win over both.
type Config struct {
	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty runs without a durable store

	// Generation backend
	GenerationProvider       string `json:"generation_provider,omitempty"`        // "remote" (default) or "gemini"
	GenerationServiceURL     string `json:"generation_service_url,omitempty"`     // Base URL of the remote generation service
	GenerationTimeoutMinutes int    `json:"generation_timeout_minutes,omitempty"` // Per-call bound for the remote provider
	GeminiAPIKey             string `json:"gemini_api_key,omitempty"`             // Gemini API key (gemini provider)
	GeminiModel              string `json:"gemini_model,omitempty"`               // Gemini model override
}

// DefaultPort is used when no port is configured anywhere.
const DefaultPort = 8080

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overlays environment variables onto the configuration. Set
// variables always win over file values.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("GENERATION_PROVIDER"); v != "" {
		c.GenerationProvider = v
	}
	if v := os.Getenv("GENERATION_SERVICE_URL"); v != "" {
		c.GenerationServiceURL = v
	}
	if v := os.Getenv("GENERATION_TIMEOUT_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_TIMEOUT_MINUTES %q: %w", v, err)
		}
		c.GenerationTimeoutMinutes = minutes
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.GeminiModel = v
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.GenerationTimeoutMinutes < 0 {
		return fmt.Errorf("config error: 'generation_timeout_minutes' must be non-negative")
	}

	switch c.GenerationProvider {
	case "", "remote":
		// Remote runs against whatever base URL is wired at startup.
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("config error: 'gemini_api_key' is required for the gemini provider")
		}
	default:
		return fmt.Errorf("config error: unknown generation provider %q", c.GenerationProvider)
	}

	return nil
}
