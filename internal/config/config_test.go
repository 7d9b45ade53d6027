package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/logging"
)

var envKeys = []string{
	"POKEDEX_BASE_URL", "POKEDEX_USER_AGENT", "POKEDEX_PAGE_SIZE",
	"POKEDEX_MAX_CONCURRENCY", "POKEDEX_HTTP_TIMEOUT", "PORT", "REDIS_URL",
	"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_PRETTY",
}

// clearEnv unsets every variable read by FromEnv for the test's duration.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.BaseURL != "https://pokeapi.co/api/v2" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.PageSize != 800 {
		t.Errorf("PageSize = %d, want 800", cfg.PageSize)
	}
	if cfg.MaxConcurrency != 10 {
		t.Errorf("MaxConcurrency = %d, want 10", cfg.MaxConcurrency)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.Port != "8080" || cfg.RedisURL != "" {
		t.Errorf("Port = %q, RedisURL = %q", cfg.Port, cfg.RedisURL)
	}
	if cfg.LogLevel != logging.LevelInfo || cfg.LogPretty {
		t.Errorf("LogLevel = %q, LogPretty = %v", cfg.LogLevel, cfg.LogPretty)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("POKEDEX_BASE_URL", "http://localhost:9000/api/v2")
	t.Setenv("POKEDEX_PAGE_SIZE", "100")
	t.Setenv("POKEDEX_MAX_CONCURRENCY", "4")
	t.Setenv("POKEDEX_HTTP_TIMEOUT", "5s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.BaseURL != "http://localhost:9000/api/v2" || cfg.PageSize != 100 || cfg.MaxConcurrency != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if want := []string{"http://a.test", "http://b.test"}; !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
	if !cfg.Logging().Pretty {
		t.Error("Logging().Pretty = false")
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"POKEDEX_PAGE_SIZE", "lots"},
		{"POKEDEX_PAGE_SIZE", "0"},
		{"POKEDEX_MAX_CONCURRENCY", "-1"},
		{"POKEDEX_HTTP_TIMEOUT", "soon"},
		{"LOG_PRETTY", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := FromEnv(); err == nil {
				t.Error("FromEnv() error = nil, want error")
			}
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")

	path := filepath.Join(t.TempDir(), ".env")
	content := "POKEDEX_PAGE_SIZE=50\nPORT=7777\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50 from file", cfg.PageSize)
	}
	if cfg.Port != "9999" {
		t.Errorf("Port = %q, existing environment must win", cfg.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Load() error = %v, want nil for missing file", err)
	}
}
