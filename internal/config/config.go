// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultModelPath is where the trained pipeline is expected when MODEL_PATH
// is not set.
const DefaultModelPath = "data/real_estate_model_v4.json"

// Config holds all application configuration.
type Config struct {
	Port          string
	Env           string
	ModelPath     string
	StationsPath  string
	DistrictsPath string
	CacheTTL      time.Duration
	HTTPTimeout   time.Duration
	LogLevel      slog.Level
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first; variables already
// set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		ModelPath:     getEnv("MODEL_PATH", DefaultModelPath),
		StationsPath:  getEnv("STATIONS_PATH", ""),
		DistrictsPath: getEnv("DISTRICTS_PATH", ""),
		CacheTTL:      getDurationEnv("CACHE_TTL_SECONDS", 300) * time.Second,
		HTTPTimeout:   getDurationEnv("HTTP_TIMEOUT_SECONDS", 15) * time.Second,
		LogLevel:      getLevelEnv("LOG_LEVEL", slog.LevelInfo),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// HasStations reports whether a station file is configured.
func (c *Config) HasStations() bool {
	return c.StationsPath != ""
}

// HasDistricts reports whether a district centroid file is configured.
func (c *Config) HasDistricts() bool {
	return c.DistrictsPath != ""
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	var errs []error
	if c.ModelPath == "" {
		errs = append(errs, errors.New("MODEL_PATH must not be empty"))
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Port))
	}
	if c.HasDistricts() && !c.HasStations() {
		errs = append(errs, errors.New("DISTRICTS_PATH requires STATIONS_PATH"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT_SECONDS must be positive"))
	}
	return errors.Join(errs...)
}

// NewLogger returns a text logger in development and a JSON logger elsewhere.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds)
		}
	}
	return time.Duration(defaultSeconds)
}

func getLevelEnv(key string, defaultLevel slog.Level) slog.Level {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return defaultLevel
	}
	return level
}
