package mocks

import (
	"strconv"
	"strings"
	"time"

	"github.com/you/nirogsvc/domain"
)

// MockTokenService implements domain.TokenService interface for testing.
// Default tokens have the form "token-<userID>-<role>".
type MockTokenService struct {
	GenerateFunc func(user *domain.User) (string, time.Time, error)
	ValidateFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Generate issues a credential for user
func (m *MockTokenService) Generate(user *domain.User) (string, time.Time, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(user)
	}
	return "token-" + strconv.FormatUint(uint64(user.ID), 10) + "-" + user.Role,
		time.Now().Add(7 * 24 * time.Hour), nil
}

// Validate parses a credential
func (m *MockTokenService) Validate(token string) (*domain.TokenClaims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token)
	}
	parts := strings.SplitN(token, "-", 3)
	if len(parts) != 3 || parts[0] != "token" {
		return nil, domain.ErrTokenMalformed
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, domain.ErrTokenMalformed
	}
	return &domain.TokenClaims{UserID: uint(id), Role: parts[2]}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
