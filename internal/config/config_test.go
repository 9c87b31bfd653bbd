/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ProviderBaseURL != "https://api.sunrisesunset.io/json" {
		t.Fatalf("unexpected provider URL: %q", cfg.ProviderBaseURL)
	}
	if cfg.RetryAttempts != 5 {
		t.Fatalf("unexpected retry attempts: %d", cfg.RetryAttempts)
	}
	if cfg.RetryDelay != 120*time.Second {
		t.Fatalf("unexpected retry delay: %v", cfg.RetryDelay)
	}
	if cfg.DBBackend != DatabaseSQLite {
		t.Fatalf("unexpected database backend: %q", cfg.DBBackend)
	}
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	t.Setenv("HELIOSTAT_LOCATION_FILE", "/tmp/lat_long.txt")
	t.Setenv("HELIOSTAT_RETRY_DELAY", "30s")
	t.Setenv("HELIOSTAT_JOURNAL_ENABLED", "no")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LocationFile != "/tmp/lat_long.txt" {
		t.Fatalf("unexpected location file: %q", cfg.LocationFile)
	}
	if cfg.RetryDelay != 30*time.Second {
		t.Fatalf("unexpected retry delay: %v", cfg.RetryDelay)
	}
	if cfg.JournalEnabled {
		t.Fatal("expected journal to be disabled")
	}
}

func TestLoadAcceptsBareSecondsForDurations(t *testing.T) {
	t.Setenv("HELIOSTAT_RETRY_DELAY", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RetryDelay != 120*time.Second {
		t.Fatalf("unexpected retry delay: %v", cfg.RetryDelay)
	}
}

func TestLoadReadsConfigFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heliostat.yaml")
	content := "environment: production\nhttp_port: 9999\nprovider_timezone: America/New_York\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("HELIOSTAT_CONFIG", path)
	t.Setenv("HELIOSTAT_HTTP_PORT", "9071")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Environment != "production" {
		t.Fatalf("unexpected environment: %q", cfg.Environment)
	}
	if cfg.ProviderTimezone != "America/New_York" {
		t.Fatalf("unexpected timezone: %q", cfg.ProviderTimezone)
	}
	if cfg.HTTPPort != 9071 {
		t.Fatalf("env should override file, got port %d", cfg.HTTPPort)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("HELIOSTAT_DB_BACKEND", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail for unknown backend")
	}
}

func TestLoadRejectsZeroRetryAttempts(t *testing.T) {
	t.Setenv("HELIOSTAT_RETRY_ATTEMPTS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail for zero retry attempts")
	}
}
