package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
)

// MsgInternal is the body of every 500 response.
const MsgInternal = "Internal server error"

var publicMessages = []struct {
	err error
	msg string
}{
	{domain.ErrOTPNotFound, "OTP not found or already verified"},
	{domain.ErrOTPExpired, "OTP has expired"},
	{domain.ErrOTPMaxAttempts, "Too many failed attempts"},
	{domain.ErrOTPInvalid, "Invalid OTP"},
	{domain.ErrInvalidCredentials, "Invalid credentials"},
	{domain.ErrEmailTaken, "User with this email already exists"},
	{domain.ErrPhoneTaken, "User with this phone number already exists"},
	{domain.ErrCaseExists, "Doctor profile already exists"},
	{domain.ErrRegistrationTaken, "Registration number already registered"},
	{domain.ErrCaseDecided, "Verification case already decided"},
	{domain.ErrCaseNotFound, "Doctor profile not found"},
	{domain.ErrUserNotFound, "User not found"},
	{domain.ErrBlobNotFound, "Document not found"},
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:   http.StatusBadRequest,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindConflict:     http.StatusConflict,
}

// respondError writes err as {"error": message} with the status of its kind.
// Internal errors are logged and never shown to the caller.
func respondError(c *gin.Context, logger zerolog.Logger, err error) {
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		logger.Error().Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgInternal})
		return
	}
	c.JSON(status, gin.H{"error": publicMessage(err, kind)})
}

func publicMessage(err error, kind domain.ErrorKind) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	for _, m := range publicMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	if kind == domain.KindUnauthorized {
		return "Unauthorized"
	}
	return err.Error()
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
