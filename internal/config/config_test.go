package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate_ValidConfig(t *testing.T) {
	cfg := validBaseConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_URLOverridesHostPort(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Database.URL = "ws://127.0.0.1:41234"
	cfg.Database.Host = ""
	cfg.Database.Port = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config with DB_URL, got error: %v", err)
	}
}

func TestConfig_Validate_BadURLScheme(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Database.URL = "http://127.0.0.1:8000"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for http DB_URL")
	}
	if !strings.Contains(err.Error(), "DB_URL") {
		t.Errorf("expected error to mention DB_URL, got: %v", err)
	}
}

func TestConfig_Validate_MissingDatabaseHost(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Database.Host = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing DB_HOST")
	}
	if !strings.Contains(err.Error(), "DB_HOST") {
		t.Errorf("expected error to mention DB_HOST, got: %v", err)
	}
}

func TestConfig_Validate_MissingNamespace(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Database.Namespace = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing DB_NAMESPACE")
	}
	if !strings.Contains(err.Error(), "DB_NAMESPACE") {
		t.Errorf("expected error to mention DB_NAMESPACE, got: %v", err)
	}
}

func TestConfig_Validate_UnknownBackend(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Provision.Backend = "vm"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown PROVISION_BACKEND")
	}
	if !strings.Contains(err.Error(), "PROVISION_BACKEND") {
		t.Errorf("expected error to mention PROVISION_BACKEND, got: %v", err)
	}
}

func TestConfig_Validate_DockerRequiresImage(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Provision.Backend = BackendDocker
	cfg.Provision.Image = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for docker backend without image")
	}
	if !strings.Contains(err.Error(), "SURREAL_IMAGE") {
		t.Errorf("expected error to mention SURREAL_IMAGE, got: %v", err)
	}
}

func TestConfig_Validate_NegativeConcurrency(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Seed.Concurrency = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative SEED_CONCURRENCY")
	}
	if !strings.Contains(err.Error(), "SEED_CONCURRENCY") {
		t.Errorf("expected error to mention SEED_CONCURRENCY, got: %v", err)
	}
}

func TestConfig_Validate_InvalidPolicy(t *testing.T) {
	cfg := validBaseConfig()
	cfg.TestEnv.SetupFailurePolicy = "ignore"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid SETUP_FAILURE_POLICY")
	}
	if !strings.Contains(err.Error(), "SETUP_FAILURE_POLICY") {
		t.Errorf("expected error to mention SETUP_FAILURE_POLICY, got: %v", err)
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Database.Database = ""
	cfg.Log.Level = "trace"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for multiple invalid fields")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "DB_DATABASE") {
		t.Errorf("expected error to mention DB_DATABASE, got: %v", err)
	}
	if !strings.Contains(errStr, "LOG_LEVEL") {
		t.Errorf("expected error to mention LOG_LEVEL, got: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{EnvDatabaseURL, EnvDatabaseHost, "PROVISION_BACKEND", "SETUP_FAILURE_POLICY", "LOG_LEVEL", "DEBUG"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Database.Host)
	}
	if cfg.Provision.Backend != BackendProcess {
		t.Errorf("expected default backend process, got %s", cfg.Provision.Backend)
	}
	if cfg.Provision.StartupTimeout != 30*time.Second {
		t.Errorf("expected default startup timeout 30s, got %v", cfg.Provision.StartupTimeout)
	}
	if cfg.ContinueOnSetupFailure() {
		t.Error("expected abort to be the default setup failure policy")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got: %v", err)
	}
}

func TestLoad_DebugForcesDebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Log.Level)
	}
}

func TestLoad_AnyDebugValueEnablesDebug(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"*", "debug"},
		{"seedbed", "debug"},
		{"1", "debug"},
		{"false", "warn"},
		{"0", "warn"},
		{"", "warn"},
	}

	for _, tt := range tests {
		t.Run("DEBUG="+tt.value, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "warn")
			t.Setenv("DEBUG", tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if cfg.Log.Level != tt.want {
				t.Errorf("expected %s level, got %s", tt.want, cfg.Log.Level)
			}
		})
	}
}

func TestLoad_ReadsPublishedURL(t *testing.T) {
	t.Setenv(EnvDatabaseURL, "ws://127.0.0.1:45000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.URL != "ws://127.0.0.1:45000" {
		t.Errorf("expected published URL, got %s", cfg.Database.URL)
	}
}

func TestGetDurationEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("PROVISION_TIMEOUT", "soon")

	if got := getDurationEnv("PROVISION_TIMEOUT", 5*time.Second); got != 5*time.Second {
		t.Errorf("expected fallback of 5s, got %v", got)
	}
}

// validBaseConfig returns a valid configuration for testing
func validBaseConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "seedbed",
			Database:  "test",
			User:      "root",
			Password:  "root",
		},
		Provision: ProvisionConfig{
			Backend:        BackendProcess,
			Binary:         "surreal",
			Image:          "surrealdb/surrealdb:latest",
			StartupTimeout: 30 * time.Second,
			StopTimeout:    10 * time.Second,
		},
		TestEnv: TestEnvConfig{
			SetupFailurePolicy: PolicyAbort,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
