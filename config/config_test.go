package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads and restores them after the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range GetEnvVars() {
		if value, ok := os.LookupEnv(name); ok {
			t.Cleanup(func() { _ = os.Setenv(name, value) })
		} else {
			t.Cleanup(func() { _ = os.Unsetenv(name) })
		}
		_ = os.Unsetenv(name)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.BaseURL != "https://api.cpicpgx.org/v1" {
		t.Errorf("Expected default base URL, got %s", cfg.BaseURL)
	}
	if cfg.OutputDir != "brick" {
		t.Errorf("Expected default output dir brick, got %s", cfg.OutputDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.LogRetentionWeeks != 4 {
		t.Errorf("Expected default retention 4 weeks, got %d", cfg.LogRetentionWeeks)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("Expected no default HTTP timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.RequestsPerSecond != 5 {
		t.Errorf("Expected default rate 5, got %g", cfg.RequestsPerSecond)
	}
	if cfg.MetricsFile != "" {
		t.Errorf("Expected metrics file to be disabled by default, got %s", cfg.MetricsFile)
	}
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "PROD")
	t.Setenv("BASE_URL", "http://localhost:8080/v1/")
	t.Setenv("OUTPUT_DIR", "out")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("HTTP_TIMEOUT", "30s")
	t.Setenv("REQUESTS_PER_SECOND", "0")
	t.Setenv("METRICS_FILE", "/tmp/cpic.prom")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Env != EnvProduction {
		t.Errorf("Expected env prod, got %s", cfg.Env)
	}
	if cfg.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", cfg.BaseURL)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("Expected output dir out, got %s", cfg.OutputDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %s", cfg.HTTPTimeout)
	}
	if cfg.RequestsPerSecond != 0 {
		t.Errorf("Expected throttling disabled, got %g", cfg.RequestsPerSecond)
	}
	if cfg.MetricsFile != "/tmp/cpic.prom" {
		t.Errorf("Expected metrics file, got %s", cfg.MetricsFile)
	}
}

func TestInvalidValues(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"bad env", "ENV", "qa", "ENV must be one of"},
		{"empty env", "ENV", "", "ENV cannot be empty"},
		{"bad scheme", "BASE_URL", "ftp://api.cpicpgx.org/v1", "BASE_URL must use http or https"},
		{"missing host", "BASE_URL", "https:///v1", "BASE_URL must include a host"},
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL must be one of"},
		{"zero retention", "LOG_RETENTION_WEEKS", "0", "LOG_RETENTION_WEEKS must be positive"},
		{"large retention", "LOG_RETENTION_WEEKS", "53", "LOG_RETENTION_WEEKS is too large"},
		{"small log file", "MAX_LOG_FILE_SIZE", "1024", "MAX_LOG_FILE_SIZE is too small"},
		{"negative timeout", "HTTP_TIMEOUT", "-1s", "HTTP_TIMEOUT"},
		{"negative rate", "REQUESTS_PER_SECOND", "-2", "REQUESTS_PER_SECOND"},
		{"empty output dir", "OUTPUT_DIR", " ", "OUTPUT_DIR cannot be empty"},
		{"unparseable timeout", "HTTP_TIMEOUT", "soon", "failed to read environment"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%q", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %v", tc.expected, err)
			}
		})
	}
}
