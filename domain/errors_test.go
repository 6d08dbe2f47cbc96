package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{name: "validation error", err: NewValidationError("email", "Invalid email format"), expected: KindValidation},
		{name: "wrapped validation error", err: fmt.Errorf("register: %w", NewValidationError("role", "Invalid role")), expected: KindValidation},
		{name: "otp not found", err: ErrOTPNotFound, expected: KindValidation},
		{name: "otp expired", err: ErrOTPExpired, expected: KindValidation},
		{name: "otp max attempts", err: ErrOTPMaxAttempts, expected: KindValidation},
		{name: "otp invalid", err: ErrOTPInvalid, expected: KindValidation},
		{name: "invalid credentials", err: ErrInvalidCredentials, expected: KindUnauthorized},
		{name: "unauthorized", err: ErrUnauthorized, expected: KindUnauthorized},
		{name: "expired token", err: ErrTokenExpired, expected: KindUnauthorized},
		{name: "email taken", err: ErrEmailTaken, expected: KindConflict},
		{name: "phone taken", err: ErrPhoneTaken, expected: KindConflict},
		{name: "case exists", err: ErrCaseExists, expected: KindConflict},
		{name: "registration number taken", err: fmt.Errorf("create: %w", ErrRegistrationTaken), expected: KindConflict},
		{name: "case decided", err: ErrCaseDecided, expected: KindConflict},
		{name: "case not found", err: ErrCaseNotFound, expected: KindNotFound},
		{name: "user not found", err: ErrUserNotFound, expected: KindNotFound},
		{name: "unknown error", err: errors.New("connection reset"), expected: KindInternal},
		{name: "nil error", err: nil, expected: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expected {
				t.Errorf("KindOf(%v) = %d, want %d", tt.err, got, tt.expected)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("password", PasswordNoUpper)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected *ValidationError")
	}
	if ve.Field != "password" {
		t.Errorf("expected field password, got %q", ve.Field)
	}
	if err.Error() != PasswordNoUpper {
		t.Errorf("expected message %q, got %q", PasswordNoUpper, err.Error())
	}
}
