package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
)

// Validation messages returned by the OTP operations.
const (
	MsgPhonePurposeRequired = "Phone and purpose are required"
	MsgOTPFieldsRequired    = "Phone, OTP code, and purpose are required"
	MsgInvalidPurpose       = "Invalid purpose"
)

// OTPServiceImpl implements domain.OTPService on top of an OTPRepository
type OTPServiceImpl struct {
	repo            domain.OTPRepository
	notificationSvc domain.NotificationService
	auditLogger     domain.AuditLogger
	clock           domain.Clock
	logger          zerolog.Logger
	config          OTPConfig
}

type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
}

// DefaultOTPConfig is a 10 minute code with three tries.
var DefaultOTPConfig = OTPConfig{TTL: 10 * time.Minute, MaxAttempts: 3}

// NewOTPService creates a new OTP service
func NewOTPService(
	repo domain.OTPRepository,
	notificationSvc domain.NotificationService,
	auditLogger domain.AuditLogger,
	clock domain.Clock,
	logger zerolog.Logger,
	config OTPConfig,
) domain.OTPService {
	if config.TTL <= 0 {
		config.TTL = DefaultOTPConfig.TTL
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultOTPConfig.MaxAttempts
	}
	return &OTPServiceImpl{
		repo:            repo,
		notificationSvc: notificationSvc,
		auditLogger:     auditLogger,
		clock:           clock,
		logger:          logger,
		config:          config,
	}
}

// Send implements domain.OTPService. Any earlier code for the same phone and
// purpose stops working.
func (s *OTPServiceImpl) Send(ctx context.Context, phone, purpose string) (*domain.OTPRecord, error) {
	if strings.TrimSpace(phone) == "" || purpose == "" {
		return nil, domain.NewValidationError("phone", MsgPhonePurposeRequired)
	}
	phone = domain.NormalizePhone(phone)
	if !domain.IsValidPhone(phone) {
		return nil, domain.NewValidationError("phone", MsgInvalidPhone)
	}
	if !domain.IsOneOf(purpose, domain.OTPPurposes) {
		return nil, domain.NewValidationError("purpose", MsgInvalidPurpose)
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	now := s.clock.Now()
	record := &domain.OTPRecord{
		ID:        uuid.NewString(),
		Phone:     phone,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.config.TTL),
		CreatedAt: now,
	}
	if err := s.repo.Replace(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}

	message := fmt.Sprintf("Your Nirog OTP is: %s. Valid for %d minutes.", code, int(s.config.TTL.Minutes()))
	if err := s.notificationSvc.SendSMS(phone, message); err != nil {
		s.logger.Warn().Err(err).Str("purpose", purpose).Msg("otp sms delivery failed")
	}

	s.logEvent(ctx, domain.NewAuditEvent(domain.OTPRequestEvent, 0).
		WithPhone(phone).
		WithMetadata("purpose", purpose))
	return record, nil
}

// Verify implements domain.OTPService
func (s *OTPServiceImpl) Verify(ctx context.Context, phone, code, purpose string) error {
	if strings.TrimSpace(phone) == "" || code == "" || purpose == "" {
		return domain.NewValidationError("phone", MsgOTPFieldsRequired)
	}
	phone = domain.NormalizePhone(phone)

	err := s.verify(ctx, phone, code, purpose)
	event := domain.NewAuditEvent(domain.OTPVerifyEvent, 0).
		WithPhone(phone).
		WithMetadata("purpose", purpose)
	if err != nil {
		event.EventType = domain.OTPFailureEvent
		event.WithError(err)
	}
	s.logEvent(ctx, event)
	return err
}

func (s *OTPServiceImpl) verify(ctx context.Context, phone, code, purpose string) error {
	record, err := s.repo.FindActive(ctx, phone, purpose)
	if err != nil {
		return err
	}

	if record.Expired(s.clock.Now()) {
		return domain.ErrOTPExpired
	}

	if record.Attempts >= s.config.MaxAttempts {
		return domain.ErrOTPMaxAttempts
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		if _, err := s.repo.IncrementAttempts(ctx, record); err != nil {
			if errors.Is(err, domain.ErrOTPNotFound) {
				return err
			}
			return fmt.Errorf("failed to record OTP attempt: %w", err)
		}
		return domain.ErrOTPInvalid
	}

	return s.repo.MarkVerified(ctx, record)
}

// generateCode returns a uniformly distributed six digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (s *OTPServiceImpl) logEvent(ctx context.Context, event *domain.AuditEvent) {
	if s.auditLogger == nil {
		return
	}
	_ = s.auditLogger.LogEvent(ctx, event.WithClientContext(domain.ClientContextFrom(ctx)))
}
