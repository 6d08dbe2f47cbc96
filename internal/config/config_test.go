package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
app:
  port: 9090
  gin_mode: release
  env: development
database:
  dsn: "host=db user=nirog dbname=nirog"
redis:
  addr: "redis:6379"
  db: 2
jwt:
  secret: "file-secret"
  issuer: "nirogsvc"
  access_ttl: "168h"
otp:
  ttl: "10m"
  retention: "24h"
storage:
  driver: local
  local_path: "/tmp/uploads"
location:
  cache_ttl: "30s"
casbin:
  model_path: "config/rbac_model.conf"
`

const testOwnershipYAML = `
ownershipRules:
  - method: POST
    path: /api/doctors/verify
    source: form
    paramName: userId
    optional: true
`

func writeConfigDir(t *testing.T, cfgYAML string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(cfgYAML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ownership_rules.yml"), []byte(testOwnershipYAML), 0o600))
	return dir
}

func TestLoadFrom_FileValues(t *testing.T) {
	dir := writeConfigDir(t, testConfigYAML)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 7*24*time.Hour, cfg.AccessTTL)
	assert.Equal(t, 10*time.Minute, cfg.OTP_TTL)
	assert.Equal(t, 24*time.Hour, cfg.OTP_Retention)
	assert.Equal(t, 3, cfg.OTP_MaxAttempts, "max attempts defaults to 3")
	assert.Equal(t, 30*time.Second, cfg.FacilityTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.IsProduction())

	require.Len(t, cfg.OwnershipRules, 1)
	assert.Equal(t, "form", cfg.OwnershipRules[0].Source)
	assert.Equal(t, "userId", cfg.OwnershipRules[0].ParamName)
	assert.True(t, cfg.OwnershipRules[0].Optional)
}

func TestLoadFrom_EnvironmentOverrides(t *testing.T) {
	dir := writeConfigDir(t, testConfigYAML)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REDIS_DB", "5")
	t.Setenv("APP_ENV", "staging")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, 5, cfg.RedisDB)
	assert.Equal(t, "staging", cfg.Env)
}

func TestLoadFrom_InvalidDuration(t *testing.T) {
	dir := writeConfigDir(t, testConfigYAML+"\n")
	bad := []byte(`
app: {port: 8080}
database: {dsn: x}
redis: {addr: y}
jwt: {secret: s, access_ttl: "a week"}
casbin: {model_path: m}
storage: {local_path: /tmp}
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), bad, 0o600))

	_, err := LoadFrom(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JWT access TTL")
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:            "8080",
			DSN:             "dsn",
			RedisAddr:       "localhost:6379",
			JWTSecret:       "secret",
			CasbinModelPath: "config/rbac_model.conf",
			StorageDriver:   "local",
			StoragePath:     "./uploads",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing dsn", mutate: func(c *Config) { c.DSN = "" }, wantErr: "database.dsn is required"},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "jwt.secret is required"},
		{name: "short production secret", mutate: func(c *Config) { c.Env = "production" }, wantErr: "at least 32 characters"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.StorageDriver = "s3" }, wantErr: "s3_bucket"},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "ftp" }, wantErr: `unknown storage driver "ftp"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
