package config

import (
	"os"
	"testing"
	"time"
)

var configKeys = []string{
	"COOKBOOK_STORAGE",
	"COOKBOOK_DATA_PATH",
	"COOKBOOK_HTTP_HOST",
	"COOKBOOK_HTTP_PORT",
	"COOKBOOK_LOG_LEVEL",
	"COOKBOOK_LOG_FORMAT",
	"COOKBOOK_CLI_LOG_LEVEL",
	"COOKBOOK_SQLITE_BUSY_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		// Setenv first so the original value is restored after the test.
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Storage != "json" {
			t.Fatalf("expected default storage json, got %q", cfg.Storage)
		}
		if cfg.Addr() != "127.0.0.1:4173" {
			t.Fatalf("unexpected default address: %q", cfg.Addr())
		}
		if cfg.LogLevel != "info" || cfg.LogFormat != "json" || cfg.CLILogLevel != "error" {
			t.Fatalf("unexpected logging defaults: %+v", cfg)
		}
		if cfg.SQLiteBusyTimeout != 5*time.Second {
			t.Fatalf("expected busy timeout 5s, got %s", cfg.SQLiteBusyTimeout)
		}
		if cfg.DataPath != "" {
			t.Fatalf("expected empty data path, got %q", cfg.DataPath)
		}
	})

	t.Run("reads overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("COOKBOOK_STORAGE", "sqlite")
		t.Setenv("COOKBOOK_DATA_PATH", "/var/lib/club.sqlite")
		t.Setenv("COOKBOOK_HTTP_PORT", "9000")
		t.Setenv("COOKBOOK_SQLITE_BUSY_TIMEOUT", "250ms")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Storage != "sqlite" || cfg.DataPath != "/var/lib/club.sqlite" || cfg.HTTPPort != 9000 {
			t.Fatalf("overrides not applied: %+v", cfg)
		}
		if cfg.SQLiteBusyTimeout != 250*time.Millisecond {
			t.Fatalf("expected 250ms, got %s", cfg.SQLiteBusyTimeout)
		}
	})

	t.Run("errors on unparsable values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("COOKBOOK_HTTP_PORT", "eighty")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for non-numeric port")
		}
	})

	t.Run("aggregates invalid values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("COOKBOOK_STORAGE", "postgres")
		t.Setenv("COOKBOOK_LOG_FORMAT", "xml")
		t.Setenv("COOKBOOK_HTTP_PORT", "0")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected validation error")
		}
		expected := "invalid values: COOKBOOK_STORAGE, COOKBOOK_HTTP_PORT, COOKBOOK_LOG_FORMAT"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
