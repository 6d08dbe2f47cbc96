package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/you/nirogsvc/internal/config"
)

// TestJWTSecret signs session tokens in tests.
const TestJWTSecret = "test-jwt-secret-for-e2e-validation-0123456789"

// LoadTestConfig loads config/ from the project root with test overrides.
// Store endpoints from the file are kept but unused; tests run on sqlite and
// miniredis.
func LoadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	SetupTestEnvironment(t)

	cfg, err := config.LoadFrom(filepath.Join(GetProjectRoot(), "config"))
	if err != nil {
		t.Fatalf("Failed to load test configuration: %v", err)
	}
	cfg.CasbinModelPath = filepath.Join(GetProjectRoot(), cfg.CasbinModelPath)
	cfg.StorageDriver = "local"
	cfg.StoragePath = t.TempDir()
	return cfg
}

// SetupTestEnvironment sets test environment variables for the duration of t.
func SetupTestEnvironment(t *testing.T) {
	t.Helper()

	for key, value := range map[string]string{
		"APP_ENV":            "test",
		"GIN_MODE":           "test",
		"LOG_LEVEL":          "error",
		"JWT_SECRET":         TestJWTSecret,
		"JWT_ISSUER":         "nirogsvc-test",
		"TWILIO_ACCOUNT_SID": "",
		"SMTP_HOST":          "",
	} {
		t.Setenv(key, value)
	}
}

// GetProjectRoot returns the directory holding go.mod.
func GetProjectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}

	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd
		}

		parent := filepath.Dir(wd)
		if parent == wd {
			break
		}
		wd = parent
	}

	return "."
}
