/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration. Values come from an optional
// YAML file pointed at by HELIOSTAT_CONFIG, overridden by environment
// variables. The geographic location itself is never configured here; it is
// read from the location file at startup.
type Config struct {
	Environment  string `yaml:"environment"`
	LocationFile string `yaml:"location_file"`

	// Sun data provider
	ProviderBaseURL  string        `yaml:"provider_base_url"`
	ProviderTimezone string        `yaml:"provider_timezone"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	RetryAttempts    uint          `yaml:"retry_attempts"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
	CrossCheck       bool          `yaml:"cross_check"`

	// Status/metrics HTTP server
	HTTPBind string `yaml:"http_bind"`
	HTTPPort int    `yaml:"http_port"`

	// Transition journal
	JournalEnabled bool            `yaml:"journal_enabled"`
	DBBackend      DatabaseBackend `yaml:"db_backend"`
	DBDSN          string          `yaml:"db_dsn"`

	// Tracing configuration
	TracingEnabled    bool    `yaml:"tracing_enabled"`
	OTLPEndpoint      string  `yaml:"otlp_endpoint"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate"`

	LogBufferSize int `yaml:"log_buffer_size"`
}

// Load reads the optional config file and environment variables, applies
// defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:  "development",
		LocationFile: "/etc/heliostat/lat_long.txt",

		ProviderBaseURL:  "https://api.sunrisesunset.io/json",
		ProviderTimezone: "Europe/London",
		FetchTimeout:     60 * time.Second,
		RetryAttempts:    5,
		RetryDelay:       120 * time.Second,
		CrossCheck:       true,

		HTTPBind: "127.0.0.1",
		HTTPPort: 9070,

		JournalEnabled: true,
		DBBackend:      DatabaseSQLite,
		DBDSN:          "heliostat.db",

		TracingEnabled:    false,
		OTLPEndpoint:      "localhost:4317",
		TracingSampleRate: 1.0,

		LogBufferSize: 2000,
	}

	if path := os.Getenv("HELIOSTAT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Environment = getEnv("HELIOSTAT_ENV", cfg.Environment)
	cfg.LocationFile = getEnv("HELIOSTAT_LOCATION_FILE", cfg.LocationFile)
	cfg.ProviderBaseURL = getEnv("HELIOSTAT_PROVIDER_URL", cfg.ProviderBaseURL)
	cfg.ProviderTimezone = getEnv("HELIOSTAT_PROVIDER_TIMEZONE", cfg.ProviderTimezone)
	cfg.FetchTimeout = getEnvDuration("HELIOSTAT_FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.RetryAttempts = uint(getEnvInt("HELIOSTAT_RETRY_ATTEMPTS", int(cfg.RetryAttempts)))
	cfg.RetryDelay = getEnvDuration("HELIOSTAT_RETRY_DELAY", cfg.RetryDelay)
	cfg.CrossCheck = getEnvBool("HELIOSTAT_CROSS_CHECK", cfg.CrossCheck)
	cfg.HTTPBind = getEnv("HELIOSTAT_HTTP_BIND", cfg.HTTPBind)
	cfg.HTTPPort = getEnvInt("HELIOSTAT_HTTP_PORT", cfg.HTTPPort)
	cfg.JournalEnabled = getEnvBool("HELIOSTAT_JOURNAL_ENABLED", cfg.JournalEnabled)
	cfg.DBBackend = DatabaseBackend(getEnv("HELIOSTAT_DB_BACKEND", string(cfg.DBBackend)))
	cfg.DBDSN = getEnv("HELIOSTAT_DB_DSN", cfg.DBDSN)
	cfg.TracingEnabled = getEnvBool("HELIOSTAT_TRACING_ENABLED", cfg.TracingEnabled)
	cfg.OTLPEndpoint = getEnv("HELIOSTAT_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.TracingSampleRate = getEnvFloat("HELIOSTAT_TRACING_SAMPLE_RATE", cfg.TracingSampleRate)
	cfg.LogBufferSize = getEnvInt("HELIOSTAT_LOG_BUFFER_SIZE", cfg.LogBufferSize)

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}
	if cfg.JournalEnabled && cfg.DBDSN == "" {
		return nil, fmt.Errorf("HELIOSTAT_DB_DSN must be provided when the journal is enabled")
	}
	if cfg.RetryAttempts == 0 {
		return nil, fmt.Errorf("HELIOSTAT_RETRY_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("120s", "2m") and bare
// second counts for compatibility with older unit files.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if parsed, err := time.ParseDuration(v); err == nil {
		return parsed
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
