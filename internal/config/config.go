// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Database
	DatabasePath string // Path to SQLite file

	// Authentication
	APIKey string // API key for location management endpoints

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Default location used by /facts when no coordinates are given
	DefaultLocationName string
	DefaultLatitude     float64
	DefaultLongitude    float64
	DefaultTimeZone     string
	Diaspora            bool

	// Offsets from sunset, in minutes
	CandleLightingMinutes int
	HavdalahMinutes       int

	// Snapshot refresh
	RefreshSchedule string // standard cron spec or descriptor such as @daily

	// Rate limiting per client IP
	RateLimitRPS   float64
	RateLimitBurst int
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// No-op in production where env vars are set directly
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Database
	cfg.DatabasePath = getEnv("DATABASE_PATH", "./data/molad.db")

	// Authentication
	cfg.APIKey = getEnv("API_KEY", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Location
	cfg.DefaultLocationName = getEnv("DEFAULT_LOCATION_NAME", "Jerusalem")
	cfg.DefaultLatitude = getEnvFloat("DEFAULT_LATITUDE", 31.778)
	cfg.DefaultLongitude = getEnvFloat("DEFAULT_LONGITUDE", 35.235)
	cfg.DefaultTimeZone = getEnv("DEFAULT_TIMEZONE", "Asia/Jerusalem")
	cfg.Diaspora = getEnvBool("DIASPORA", true)

	// Zmanim
	cfg.CandleLightingMinutes = getEnvInt("CANDLE_LIGHTING_MINUTES", 18)
	cfg.HavdalahMinutes = getEnvInt("HAVDALAH_MINUTES", 50)

	cfg.RefreshSchedule = getEnv("REFRESH_SCHEDULE", "@daily")

	cfg.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", 10)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 20)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}

	// API key is required in production
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if err := c.DefaultLocation().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("default location: %w", err))
	}

	if c.CandleLightingMinutes < 0 || c.CandleLightingMinutes > 120 {
		errs = append(errs, fmt.Errorf("CANDLE_LIGHTING_MINUTES must be between 0 and 120, got %d", c.CandleLightingMinutes))
	}
	if c.HavdalahMinutes < 0 || c.HavdalahMinutes > 120 {
		errs = append(errs, fmt.Errorf("HAVDALAH_MINUTES must be between 0 and 120, got %d", c.HavdalahMinutes))
	}

	// Empty schedule disables the refresher
	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			errs = append(errs, fmt.Errorf("REFRESH_SCHEDULE %q: %w", c.RefreshSchedule, err))
		}
	}

	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %g", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// DefaultLocation returns the configured default location.
func (c *Config) DefaultLocation() calendar.Location {
	return calendar.Location{
		Name:      c.DefaultLocationName,
		Latitude:  c.DefaultLatitude,
		Longitude: c.DefaultLongitude,
		TimeZone:  c.DefaultTimeZone,
		Diaspora:  c.Diaspora,
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
