// Package config loads and validates equipcost's runtime configuration from
// an optional YAML file overlaid with environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration for the CLI and HTTP server.
type Config struct {
	DiscountRate              float64       `json:"discount_rate" yaml:"discount_rate"`
	FiscalYearStartMonth      int           `json:"fiscal_year_start_month" yaml:"fiscal_year_start_month"`
	DowntimeHourlyRate        float64       `json:"downtime_hourly_rate" yaml:"downtime_hourly_rate"`
	MinForecastHistoryMonths  int           `json:"min_forecast_history_months" yaml:"min_forecast_history_months"`
	AnnualCapitalBudget       float64       `json:"annual_capital_budget" yaml:"annual_capital_budget"`

	Database DatabaseConfig `json:"database" yaml:"database"`
	API      APIConfig      `json:"api" yaml:"api"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
}

// DatabaseConfig selects and tunes the storage backend.
type DatabaseConfig struct {
	URL             string        `json:"-" yaml:"-"` // never serialized; comes from DATABASE_URL
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// APIConfig controls the HTTP server.
type APIConfig struct {
	Host              string        `json:"host" yaml:"host"`
	Port              int           `json:"port" yaml:"port"`
	RequestTimeout    time.Duration `json:"request_timeout" yaml:"request_timeout"`
	RateLimitPerSec   float64       `json:"rate_limit_per_sec" yaml:"rate_limit_per_sec"`
	RateLimitBurst    int           `json:"rate_limit_burst" yaml:"rate_limit_burst"`
}

// CacheConfig tunes the ristretto-backed read cache in internal/store.
type CacheConfig struct {
	Enabled        bool  `json:"enabled" yaml:"enabled"`
	MaxCostEntries int64 `json:"max_cost_entries" yaml:"max_cost_entries"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		DiscountRate:             0.08,
		FiscalYearStartMonth:     10,
		DowntimeHourlyRate:       500.0,
		MinForecastHistoryMonths: 24,
		AnnualCapitalBudget:      2_000_000,
		Database: DatabaseConfig{
			URL:             "sqlite://equipcost.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		API: APIConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			RequestTimeout:  60 * time.Second,
			RateLimitPerSec: 5,
			RateLimitBurst:  10,
		},
		Cache: CacheConfig{
			Enabled:        true,
			MaxCostEntries: 10_000,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file pointed to by
// EQUIPCOST_CONFIG, and environment variable overrides, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("EQUIPCOST_CONFIG"); path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data = []byte(substituteEnvVars(string(data)))
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("EQUIPCOST_DISCOUNT_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DiscountRate = f
		}
	}
	if v := os.Getenv("EQUIPCOST_FISCAL_YEAR_START_MONTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FiscalYearStartMonth = n
		}
	}
	if v := os.Getenv("EQUIPCOST_DOWNTIME_HOURLY_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DowntimeHourlyRate = f
		}
	}
	if v := os.Getenv("EQUIPCOST_ANNUAL_CAPITAL_BUDGET"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.AnnualCapitalBudget = f
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("EQUIPCOST_API_HOST"); v != "" {
		c.API.Host = v
	}
	if v := os.Getenv("EQUIPCOST_API_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.Port = n
		}
	}
}

// Validate checks basic invariants on the loaded configuration.
func (c *Config) Validate() error {
	if c.FiscalYearStartMonth < 1 || c.FiscalYearStartMonth > 12 {
		return fmt.Errorf("fiscal_year_start_month must be in [1,12], got %d", c.FiscalYearStartMonth)
	}
	if c.DiscountRate < 0 {
		return fmt.Errorf("discount_rate must be non-negative, got %f", c.DiscountRate)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required")
	}
	if c.API.Port <= 0 {
		return fmt.Errorf("api port must be positive, got %d", c.API.Port)
	}
	return nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} references in a
// config file's raw text before it is parsed.
func substituteEnvVars(content string) string {
	pattern := regexp.MustCompile(`\$\{([^}:]+)(?::-(.*?))?\}`)

	return pattern.ReplaceAllStringFunc(content, func(match string) string {
		start := strings.Index(match, "${") + 2
		end := strings.Index(match, "}")
		if end == -1 {
			return match
		}
		varPart := match[start:end]
		var varName, defaultValue string
		if colonIndex := strings.Index(varPart, ":-"); colonIndex != -1 {
			varName = varPart[:colonIndex]
			defaultValue = varPart[colonIndex+2:]
		} else {
			varName = varPart
		}
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}
