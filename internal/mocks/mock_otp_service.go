package mocks

import (
	"context"
	"time"

	"github.com/you/nirogsvc/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	SendFunc   func(ctx context.Context, phone, purpose string) (*domain.OTPRecord, error)
	VerifyFunc func(ctx context.Context, phone, code, purpose string) error
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Send issues a code
func (m *MockOTPService) Send(ctx context.Context, phone, purpose string) (*domain.OTPRecord, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, phone, purpose)
	}
	// Default behavior: fixed code "123456"
	return &domain.OTPRecord{
		ID:        "mock-otp",
		Phone:     phone,
		Code:      "123456",
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(10 * time.Minute),
		CreatedAt: time.Now(),
	}, nil
}

// Verify checks a code
func (m *MockOTPService) Verify(ctx context.Context, phone, code, purpose string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, phone, code, purpose)
	}
	if code == "123456" {
		return nil
	}
	return domain.ErrOTPInvalid
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
