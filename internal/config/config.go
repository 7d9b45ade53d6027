// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/endpoint"
	"github.com/Sternrassler/pokedex-client/pkg/expander"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/pagination"
	"github.com/joho/godotenv"
)

// DefaultUserAgent identifies this client upstream.
const DefaultUserAgent = "pokedex-client/0.1.0"

// Config is the full runtime configuration.
type Config struct {
	BaseURL        string
	UserAgent      string
	PageSize       int
	MaxConcurrency int
	HTTPTimeout    time.Duration

	Port        string
	RedisURL    string
	CORSOrigins []string

	LogLevel  logging.LogLevel
	LogPretty bool
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		BaseURL:        endpoint.DefaultBaseURL,
		UserAgent:      DefaultUserAgent,
		PageSize:       pagination.DefaultPageSize,
		MaxConcurrency: expander.DefaultMaxConcurrency,
		HTTPTimeout:    30 * time.Second,
		Port:           "8080",
		CORSOrigins:    []string{"*"},
		LogLevel:       logging.LevelInfo,
	}
}

// Load reads files (default ".env") into the environment without
// overriding variables that are already set, then builds the Config.
// Missing files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the Config from environment variables on top of Default.
func FromEnv() (Config, error) {
	cfg := Default()
	var err error

	cfg.BaseURL = getEnv("POKEDEX_BASE_URL", cfg.BaseURL)
	cfg.UserAgent = getEnv("POKEDEX_USER_AGENT", cfg.UserAgent)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.LogLevel = logging.LogLevel(getEnv("LOG_LEVEL", string(cfg.LogLevel)))

	if cfg.PageSize, err = getInt("POKEDEX_PAGE_SIZE", cfg.PageSize); err != nil {
		return Config{}, err
	}
	if cfg.MaxConcurrency, err = getInt("POKEDEX_MAX_CONCURRENCY", cfg.MaxConcurrency); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("POKEDEX_HTTP_TIMEOUT"); v != "" {
		if cfg.HTTPTimeout, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("POKEDEX_HTTP_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		if cfg.LogPretty, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("LOG_PRETTY: %w", err)
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.UserAgent == "":
		return fmt.Errorf("user agent is required")
	case c.PageSize <= 0:
		return fmt.Errorf("page size must be > 0 (got %d)", c.PageSize)
	case c.MaxConcurrency <= 0:
		return fmt.Errorf("max concurrency must be > 0 (got %d)", c.MaxConcurrency)
	case c.HTTPTimeout < 0:
		return fmt.Errorf("http timeout must be >= 0 (got %s)", c.HTTPTimeout)
	case c.Port == "":
		return fmt.Errorf("port is required")
	}
	return nil
}

// Logging returns the logger configuration.
func (c Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Pretty = c.LogPretty
	return lc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
