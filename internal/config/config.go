package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type OwnershipRule struct {
	Method    string `yaml:"method"`
	Path      string `yaml:"path"`
	Source    string `yaml:"source"`
	ParamName string `yaml:"paramName"`
	// Optional rules pass when the field is absent from the request.
	Optional bool `yaml:"optional"`
}

type AppConfig struct {
	Port     int    `yaml:"port"`
	GinMode  string `yaml:"gin_mode"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	LogLevel string `yaml:"log_level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	Issuer    string `yaml:"issuer"`
	AccessTTL string `yaml:"access_ttl"`
}

type OTPConfig struct {
	TTL         string `yaml:"ttl"`
	MaxAttempts int    `yaml:"max_attempts"`
	Retention   string `yaml:"retention"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"`
	LocalPath string `yaml:"local_path"`
	S3Bucket  string `yaml:"s3_bucket"`
	S3Region  string `yaml:"s3_region"`
	S3Prefix  string `yaml:"s3_prefix"`
	MaxUpload int64  `yaml:"max_upload_bytes"`
}

type LocationConfig struct {
	CacheTTL string `yaml:"cache_ttl"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Storage  StorageConfig  `yaml:"storage"`
	Location LocationConfig `yaml:"location"`
	Casbin   CasbinConfig   `yaml:"casbin"`
}

type Config struct {
	Port            string
	GinMode         string
	Env             string
	LogLevel        string
	DSN             string
	DBLogLevel      string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	JWTSecret       string
	JWTIssuer       string
	AccessTTL       time.Duration
	OTP_TTL         time.Duration
	OTP_MaxAttempts int
	OTP_Retention   time.Duration
	TwilioSID       string
	TwilioToken     string
	TwilioFrom      string
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	SMTPFrom        string
	StorageDriver   string
	StoragePath     string
	S3Bucket        string
	S3Region        string
	S3Prefix        string
	MaxUploadBytes  int64
	FacilityTTL     time.Duration
	CasbinModelPath string
	OwnershipRules  []OwnershipRule
}

// IsProduction reports whether the service runs with production semantics
// (secure cookies, no OTP echo).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// Load reads config/config.yml and config/ownership_rules.yml relative to the
// working directory.
func Load() (*Config, error) {
	return LoadFrom("config")
}

// LoadFrom reads the configuration files from dir. Values from a .env file and
// the process environment override the file.
func LoadFrom(dir string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	configFile, err := loadConfigFile(dir + "/config.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := parseDuration(configFile.JWT.AccessTTL, 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	otpTTL, err := parseDuration(configFile.OTP.TTL, 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	retention, err := parseDuration(configFile.OTP.Retention, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP retention: %w", err)
	}

	facilityTTL, err := parseDuration(configFile.Location.CacheTTL, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid facility cache TTL: %w", err)
	}

	ownershipRules, err := loadOwnershipRules(dir + "/ownership_rules.yml")
	if err != nil {
		return nil, err
	}

	maxAttempts := configFile.OTP.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	maxUpload := configFile.Storage.MaxUpload
	if maxUpload == 0 {
		maxUpload = 10 << 20
	}

	cfg := &Config{
		Port:            env("PORT", strconv.Itoa(configFile.App.Port)),
		GinMode:         env("GIN_MODE", configFile.App.GinMode),
		Env:             env("APP_ENV", configFile.App.Env),
		LogLevel:        env("LOG_LEVEL", configFile.App.LogLevel),
		DSN:             env("DATABASE_URL", configFile.Database.DSN),
		DBLogLevel:      configFile.Database.LogLevel,
		RedisAddr:       env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:   env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:         envInt("REDIS_DB", configFile.Redis.DB),
		JWTSecret:       env("JWT_SECRET", configFile.JWT.Secret),
		JWTIssuer:       env("JWT_ISSUER", configFile.JWT.Issuer),
		AccessTTL:       accTTL,
		OTP_TTL:         otpTTL,
		OTP_MaxAttempts: maxAttempts,
		OTP_Retention:   retention,
		TwilioSID:       env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken:     env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:      env("TWILIO_FROM_NUMBER", configFile.Twilio.FromNumber),
		SMTPHost:        env("SMTP_HOST", configFile.SMTP.Host),
		SMTPPort:        envInt("SMTP_PORT", configFile.SMTP.Port),
		SMTPUser:        env("SMTP_USERNAME", configFile.SMTP.Username),
		SMTPPassword:    env("SMTP_PASSWORD", configFile.SMTP.Password),
		SMTPFrom:        env("SMTP_FROM", configFile.SMTP.From),
		StorageDriver:   env("STORAGE_DRIVER", configFile.Storage.Driver),
		StoragePath:     env("STORAGE_LOCAL_PATH", configFile.Storage.LocalPath),
		S3Bucket:        env("S3_BUCKET", configFile.Storage.S3Bucket),
		S3Region:        env("AWS_REGION", configFile.Storage.S3Region),
		S3Prefix:        configFile.Storage.S3Prefix,
		MaxUploadBytes:  maxUpload,
		FacilityTTL:     facilityTTL,
		CasbinModelPath: env("CASBIN_MODEL_PATH", configFile.Casbin.ModelPath),
		OwnershipRules:  ownershipRules,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings needed at startup are present and coherent.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" || c.Port == "0" {
		errs = append(errs, errors.New("app.port is required"))
	}
	if c.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.RedisAddr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	} else if c.IsProduction() && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("jwt.secret must be at least 32 characters in production"))
	}
	if c.CasbinModelPath == "" {
		errs = append(errs, errors.New("casbin.model_path is required"))
	}
	switch c.StorageDriver {
	case "", "local":
		if c.StoragePath == "" {
			errs = append(errs, errors.New("storage.local_path is required for the local driver"))
		}
	case "s3":
		if c.S3Bucket == "" || c.S3Region == "" {
			errs = append(errs, errors.New("storage.s3_bucket and storage.s3_region are required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.StorageDriver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func loadOwnershipRules(path string) ([]OwnershipRule, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read ownership rules file: %w", err)
	}

	var rules struct {
		Rules []OwnershipRule `yaml:"ownershipRules"`
	}
	if err := yaml.Unmarshal(bytes, &rules); err != nil {
		return nil, fmt.Errorf("could not parse ownership rules yaml: %w", err)
	}
	return rules.Rules, nil
}
