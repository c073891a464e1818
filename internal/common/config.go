// Package common provides shared utilities for Fathom
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Fathom
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Refresh     RefreshConfig   `toml:"refresh"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
}

// StorageConfig holds path configuration for the data store.
type StorageConfig struct {
	Path string `toml:"path" validate:"required"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo YahooConfig `toml:"yahoo"`
	FRED  FREDConfig  `toml:"fred"`
}

// YahooConfig holds Yahoo Finance API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url" validate:"omitempty,url"`
	RateLimit int    `toml:"rate_limit" validate:"gte=1"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// FREDConfig holds FRED API configuration
type FREDConfig struct {
	BaseURL    string `toml:"base_url" validate:"omitempty,url"`
	APIKey     string `toml:"api_key"`
	CacheHours int    `toml:"cache_hours" validate:"gte=1"`
	Timeout    string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FREDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RefreshConfig holds background refresh scheduling configuration.
// Schedules use standard cron expressions; empty disables the job.
type RefreshConfig struct {
	StockSchedule string `toml:"stock_schedule"`
	MacroSchedule string `toml:"macro_schedule"`
	StaleAfter    string `toml:"stale_after"`
}

// GetStaleAfter parses and returns the staleness cutoff duration
func (c *RefreshConfig) GetStaleAfter() time.Duration {
	d, err := time.ParseDuration(c.StaleAfter)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/fathom",
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			FRED: FREDConfig{
				BaseURL:    "https://api.stlouisfed.org/fred",
				CacheHours: 24,
				Timeout:    "30s",
			},
		},
		Refresh: RefreshConfig{
			StockSchedule: "0 */4 * * *",
			MacroSchedule: "30 6 * * *",
			StaleAfter:    "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FATHOM_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FATHOM_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FATHOM_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FATHOM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FATHOM_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path)
	}

	if key := os.Getenv("FRED_API_KEY"); key != "" {
		config.Clients.FRED.APIKey = key
	}
	if key := os.Getenv("FATHOM_FRED_API_KEY"); key != "" {
		config.Clients.FRED.APIKey = key
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
