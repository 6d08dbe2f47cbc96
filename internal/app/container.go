package app

import (
	"context"
	"fmt"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/config"
	httpx "github.com/you/nirogsvc/internal/http"
	"github.com/you/nirogsvc/internal/http/handlers"
	"github.com/you/nirogsvc/internal/http/middleware"
	"github.com/you/nirogsvc/internal/infrastructure/audit"
	"github.com/you/nirogsvc/internal/infrastructure/auth"
	"github.com/you/nirogsvc/internal/infrastructure/clock"
	"github.com/you/nirogsvc/internal/infrastructure/database"
	"github.com/you/nirogsvc/internal/infrastructure/notifications"
	"github.com/you/nirogsvc/internal/infrastructure/repositories"
	"github.com/you/nirogsvc/internal/infrastructure/storage"
	"github.com/you/nirogsvc/internal/services"
)

// Infra holds the external resources the container is built on. Optional
// fields fall back to production implementations.
type Infra struct {
	DB       *gorm.DB
	Redis    redis.UniversalClient
	Blobs    domain.BlobStore
	Notifier domain.NotificationService
	Enforcer *casbin.Enforcer

	Clock     domain.Clock
	Passwords domain.PasswordService
}

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger zerolog.Logger
	Infra

	// Repositories
	UserRepo         domain.UserRepository
	VerificationRepo domain.VerificationRepository
	OTPRepo          domain.OTPRepository
	FacilityRepo     domain.FacilityRepository

	// Services
	TokenSvc        domain.TokenService
	AuditLogger     domain.AuditLogger
	AuthSvc         domain.AuthService
	OTPSvc          domain.OTPService
	VerificationSvc domain.VerificationService
	LocationSvc     domain.LocationService
	PolicySvc       domain.PolicyService

	Router *gin.Engine
}

// NewContainer connects to Postgres and Redis, prepares the blob store and
// the Casbin enforcer, and builds the container on top of them.
func NewContainer(cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	db, err := database.Open(cfg.DSN, cfg.DBLogLevel)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	blobs, err := storage.New(cfg.StorageDriver, cfg.StoragePath, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix, cfg.MaxUploadBytes)
	if err != nil {
		_ = rdb.Close()
		_ = database.Close(db)
		return nil, err
	}

	cas, err := auth.NewCasbinService(db, cfg.CasbinModelPath)
	if err != nil {
		_ = rdb.Close()
		_ = database.Close(db)
		return nil, err
	}
	if err := cas.SeedDefaultPolicies(logger); err != nil {
		_ = rdb.Close()
		_ = database.Close(db)
		return nil, err
	}

	return Build(cfg, logger, Infra{
		DB:       db,
		Redis:    rdb.Client,
		Blobs:    blobs,
		Enforcer: cas.E,
	}), nil
}

// Build wires repositories, services, middleware and the router over infra.
func Build(cfg *config.Config, logger zerolog.Logger, infra Infra) *Container {
	c := &Container{Config: cfg, Logger: logger, Infra: infra}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Passwords == nil {
		c.Passwords = auth.NewPasswordService()
	}
	if c.Notifier == nil {
		c.Notifier = notifications.NewNotifier(
			notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, logger),
			notifications.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, logger),
		)
	}

	c.initRepositories()
	c.initServices()
	c.initRouter()
	return c
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.VerificationRepo = repositories.NewVerificationRepository(c.DB)
	c.OTPRepo = repositories.NewOTPRepository(c.Redis, c.Config.OTP_Retention)
	c.FacilityRepo = repositories.NewCachedFacilityRepository(
		repositories.NewFacilityRepository(c.DB), c.Redis, c.Config.FacilityTTL, c.Logger)
}

func (c *Container) initServices() {
	c.TokenSvc = auth.NewJWTService(c.Config.JWTSecret, c.Config.JWTIssuer, c.Config.AccessTTL)
	c.AuditLogger = audit.NewLogger(c.Logger)

	c.AuthSvc = services.NewAuthService(c.UserRepo, c.Passwords, c.TokenSvc, c.AuditLogger, c.Clock)
	c.OTPSvc = services.NewOTPService(c.OTPRepo, c.Notifier, c.AuditLogger, c.Clock, c.Logger, services.OTPConfig{
		TTL:         c.Config.OTP_TTL,
		MaxAttempts: c.Config.OTP_MaxAttempts,
	})
	c.VerificationSvc = services.NewVerificationService(
		c.VerificationRepo, c.UserRepo, c.Blobs, c.Notifier, c.AuditLogger, c.Clock, c.Logger)
	c.LocationSvc = services.NewLocationService(c.FacilityRepo)
	c.PolicySvc = services.NewPolicyService(c.Enforcer)
}

func (c *Container) initRouter() {
	prod := c.Config.IsProduction()
	h := httpx.Handlers{
		Auth: handlers.NewAuthHandlers(c.AuthSvc, c.OTPSvc,
			handlers.CookieOptions{Secure: prod, MaxAge: c.Config.AccessTTL}, !prod, c.Logger),
		Doctor:   handlers.NewDoctorHandlers(c.VerificationSvc, c.Logger),
		Admin:    handlers.NewAdminHandlers(c.VerificationSvc, c.Logger),
		Location: handlers.NewLocationHandlers(c.LocationSvc, c.Logger),
		Policy:   handlers.NewPolicyHandlers(c.PolicySvc, c.Logger),
	}

	authMW := middleware.NewAuthMW(c.AuthSvc, c.Logger)
	casbinMW := middleware.NewCasbinMW(
		services.NewCasbinEnforcerWrapper(c.Enforcer), c.Config.OwnershipRules, c.AuditLogger, c.Logger)

	c.Router = httpx.BuildRouter(h, authMW, casbinMW, c.Logger, httpx.RouterOptions{
		// four documents plus the profile fields
		MaxBodyBytes: 4*c.Config.MaxUploadBytes + 1<<20,
		HealthCheck:  c.Health,
	})
}

// Health pings the database and Redis.
func (c *Container) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		return database.Close(c.DB)
	}
	return nil
}
