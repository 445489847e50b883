package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names read by Load. EnvDatabaseURL is also the
// discovery channel written by the provisioner once a store is running.
const (
	EnvDatabaseURL       = "DB_URL"
	EnvDatabaseHost      = "DB_HOST"
	EnvDatabasePort      = "DB_PORT"
	EnvDatabaseNamespace = "DB_NAMESPACE"
	EnvDatabaseName      = "DB_DATABASE"
	EnvDatabaseUser      = "DB_USER"
	EnvDatabasePassword  = "DB_PASSWORD"
)

// Provisioner backends
const (
	BackendProcess = "process"
	BackendDocker  = "docker"
)

// Setup failure policies
const (
	PolicyAbort    = "abort"
	PolicyContinue = "continue"
)

// Config holds all seedbed configuration
type Config struct {
	Database  DatabaseConfig
	Provision ProvisionConfig
	Seed      SeedConfig
	TestEnv   TestEnvConfig
	Log       LogConfig
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	URL       string
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// ProvisionConfig holds ephemeral store settings
type ProvisionConfig struct {
	Backend        string
	Binary         string
	Image          string
	StartupTimeout time.Duration
	StopTimeout    time.Duration
}

// SeedConfig holds fixture seeding settings
type SeedConfig struct {
	FixturesDir string
	Concurrency int
}

// TestEnvConfig holds test lifecycle settings
type TestEnvConfig struct {
	SetupFailurePolicy string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	level := getEnv("LOG_LEVEL", "info")
	if getBoolEnv("DEBUG", false) {
		level = "debug"
	}

	return &Config{
		Database: DatabaseConfig{
			URL:       getEnv(EnvDatabaseURL, ""),
			Host:      getEnv(EnvDatabaseHost, "localhost"),
			Port:      getEnv(EnvDatabasePort, "8000"),
			Namespace: getEnv(EnvDatabaseNamespace, "seedbed"),
			Database:  getEnv(EnvDatabaseName, "test"),
			User:      getEnv(EnvDatabaseUser, "root"),
			Password:  getEnv(EnvDatabasePassword, "root"),
		},
		Provision: ProvisionConfig{
			Backend:        getEnv("PROVISION_BACKEND", BackendProcess),
			Binary:         getEnv("SURREAL_BINARY", "surreal"),
			Image:          getEnv("SURREAL_IMAGE", "surrealdb/surrealdb:latest"),
			StartupTimeout: getDurationEnv("PROVISION_TIMEOUT", 30*time.Second),
			StopTimeout:    getDurationEnv("PROVISION_STOP_TIMEOUT", 10*time.Second),
		},
		Seed: SeedConfig{
			FixturesDir: getEnv("SEED_FIXTURES_DIR", ""),
			Concurrency: getIntEnv("SEED_CONCURRENCY", 0),
		},
		TestEnv: TestEnvConfig{
			SetupFailurePolicy: getEnv("SETUP_FAILURE_POLICY", PolicyAbort),
		},
		Log: LogConfig{
			Level:  level,
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

// ContinueOnSetupFailure returns true if setup errors are logged and swallowed
func (c *Config) ContinueOnSetupFailure() bool {
	return c.TestEnv.SetupFailurePolicy == PolicyContinue
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Database validation
	if c.Database.URL == "" {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required when DB_URL is not set"))
		}
		if c.Database.Port == "" {
			errs = append(errs, errors.New("DB_PORT is required when DB_URL is not set"))
		}
	} else if !hasWebsocketScheme(c.Database.URL) {
		errs = append(errs, fmt.Errorf("DB_URL must use ws:// or wss://, got '%s'", c.Database.URL))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// Provisioner validation
	switch c.Provision.Backend {
	case BackendProcess:
		if c.Provision.Binary == "" {
			errs = append(errs, errors.New("SURREAL_BINARY is required for the process backend"))
		}
	case BackendDocker:
		if c.Provision.Image == "" {
			errs = append(errs, errors.New("SURREAL_IMAGE is required for the docker backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("PROVISION_BACKEND must be 'process' or 'docker', got '%s'", c.Provision.Backend))
	}
	if c.Provision.StartupTimeout <= 0 {
		errs = append(errs, errors.New("PROVISION_TIMEOUT must be positive"))
	}

	// Seed validation
	if c.Seed.Concurrency < 0 {
		errs = append(errs, errors.New("SEED_CONCURRENCY must not be negative"))
	}

	// Test environment validation
	if c.TestEnv.SetupFailurePolicy != PolicyAbort && c.TestEnv.SetupFailurePolicy != PolicyContinue {
		errs = append(errs, fmt.Errorf("SETUP_FAILURE_POLICY must be 'abort' or 'continue', got '%s'", c.TestEnv.SetupFailurePolicy))
	}

	// Log validation
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got '%s'", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got '%s'", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func hasWebsocketScheme(url string) bool {
	return strings.HasPrefix(url, "ws://") || strings.HasPrefix(url, "wss://")
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getBoolEnv treats any non-empty value ParseBool cannot read as set,
// so DEBUG=* or DEBUG=seedbed count as true.
func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return true
}
