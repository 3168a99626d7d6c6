// Package config has the configuration for the CPIC data pull
package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment is the deployment environment the pull runs in
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// Config holds all application configuration
type Config struct {
	Env               Environment   `envconfig:"ENV" default:"dev"`
	BaseURL           string        `envconfig:"BASE_URL" default:"https://api.cpicpgx.org/v1"`
	OutputDir         string        `envconfig:"OUTPUT_DIR" default:"brick"`
	LogDir            string        `envconfig:"LOG_DIR" default:"logs"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
	LogRetentionWeeks int           `envconfig:"LOG_RETENTION_WEEKS" default:"4"`
	MaxLogFileSize    int64         `envconfig:"MAX_LOG_FILE_SIZE" default:"104857600"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`
	RequestsPerSecond float64       `envconfig:"REQUESTS_PER_SECOND" default:"5"`

	// Optional path of a Prometheus textfile written at the end of the run
	MetricsFile string `envconfig:"METRICS_FILE"`
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.Env = Environment(strings.ToLower(string(cfg.Env)))
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return fmt.Errorf("invalid BASE_URL: %w", err)
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		return fmt.Errorf("invalid OUTPUT_DIR: OUTPUT_DIR cannot be empty")
	}

	if strings.TrimSpace(cfg.LogDir) == "" {
		return fmt.Errorf("invalid LOG_DIR: LOG_DIR cannot be empty")
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if cfg.HTTPTimeout < 0 {
		return fmt.Errorf("invalid HTTP_TIMEOUT: must not be negative, got: %s", cfg.HTTPTimeout)
	}

	if cfg.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid REQUESTS_PER_SECOND: must not be negative, got: %g", cfg.RequestsPerSecond)
	}

	return nil
}

const (
	minLogFileSize = 1 << 20
	maxLogFileSize = 1 << 30
	maxRetention   = 52
)

var (
	validEnvs   = []Environment{EnvDevelopment, EnvStaging, EnvProduction, EnvTest}
	validLevels = []string{"debug", "info", "warn", "error"}
)

func validateEnv(env Environment) error {
	switch {
	case env == "":
		return fmt.Errorf("ENV cannot be empty")
	case !slices.Contains(validEnvs, env):
		return fmt.Errorf("ENV must be one of %v, got: %s", validEnvs, env)
	}
	return nil
}

// validateBaseURL requires an absolute http(s) URL
func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("BASE_URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("BASE_URL must be a valid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BASE_URL must use http or https, got: %q", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("BASE_URL must include a host, got: %s", raw)
	}

	return nil
}

func validateLogLevel(level string) error {
	switch {
	case level == "":
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	case !slices.Contains(validLevels, level):
		return fmt.Errorf("LOG_LEVEL must be one of %v, got: %s", validLevels, level)
	}
	return nil
}

func validateLogRetentionWeeks(weeks int) error {
	switch {
	case weeks < 1:
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	case weeks > maxRetention:
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max %d), got: %d", maxRetention, weeks)
	}
	return nil
}

// validateMaxLogFileSize bounds the rotation size between 1MB and 1GB
func validateMaxLogFileSize(size int64) error {
	switch {
	case size < minLogFileSize:
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min %d bytes), got: %d", minLogFileSize, size)
	case size > maxLogFileSize:
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max %d bytes), got: %d", maxLogFileSize, size)
	}
	return nil
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"ENV",
		"BASE_URL",
		"OUTPUT_DIR",
		"LOG_DIR",
		"LOG_LEVEL",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"HTTP_TIMEOUT",
		"REQUESTS_PER_SECOND",
		"METRICS_FILE",
	}
}
