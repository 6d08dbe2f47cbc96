package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrPhoneTaken         = errors.New("user with this phone number already exists")
	ErrUserInactive       = errors.New("user account is inactive")
)

// OTP errors
var (
	ErrOTPNotFound    = errors.New("otp not found or already verified")
	ErrOTPExpired     = errors.New("otp has expired")
	ErrOTPMaxAttempts = errors.New("too many failed attempts")
	ErrOTPInvalid     = errors.New("invalid otp")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Verification errors
var (
	ErrCaseNotFound      = errors.New("doctor profile not found")
	ErrCaseExists        = errors.New("doctor profile already exists")
	ErrRegistrationTaken = errors.New("registration number already registered")
	ErrCaseDecided       = errors.New("verification case already decided")
)

// Storage errors
var (
	ErrBlobNotFound = errors.New("blob not found")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports malformed or missing input. Message is safe to show callers.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ErrorKind classifies domain errors for the transport boundary.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
)

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &ve):
		return KindValidation
	// OTP failures are reported as bad requests, including a missing record.
	case errors.Is(err, ErrOTPNotFound), errors.Is(err, ErrOTPExpired),
		errors.Is(err, ErrOTPMaxAttempts), errors.Is(err, ErrOTPInvalid):
		return KindValidation
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUserInactive), errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired), errors.Is(err, ErrTokenMalformed):
		return KindUnauthorized
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrPhoneTaken),
		errors.Is(err, ErrCaseExists), errors.Is(err, ErrRegistrationTaken),
		errors.Is(err, ErrCaseDecided):
		return KindConflict
	case errors.Is(err, ErrCaseNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrBlobNotFound):
		return KindNotFound
	}
	return KindInternal
}
