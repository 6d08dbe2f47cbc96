package mocks

import (
	"context"
	"time"

	"github.com/you/nirogsvc/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	RegisterFunc       func(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error)
	LoginFunc          func(ctx context.Context, identifier, password string) (*domain.AuthResult, error)
	LogoutFunc         func(ctx context.Context, actor *domain.Actor) error
	ResolveSessionFunc func(ctx context.Context, token string) (*domain.User, error)
	GetProfileFunc     func(ctx context.Context, actor *domain.Actor) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// Register registers a new user
func (m *MockAuthService) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	// Default behavior: echo the input back as a fresh account
	return &domain.AuthResult{
		User: &domain.User{
			ID:        1,
			Email:     in.Email,
			Phone:     in.Phone,
			Role:      in.Role,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			IsActive:  true,
		},
		Token:     "mock_token",
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}, nil
}

// Login authenticates a user and returns auth result
func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, password)
	}
	return nil, domain.ErrInvalidCredentials
}

// Logout ends the caller's session
func (m *MockAuthService) Logout(ctx context.Context, actor *domain.Actor) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, actor)
	}
	return nil
}

// ResolveSession maps a credential to its user
func (m *MockAuthService) ResolveSession(ctx context.Context, token string) (*domain.User, error) {
	if m.ResolveSessionFunc != nil {
		return m.ResolveSessionFunc(ctx, token)
	}
	// Default behavior: no session
	return nil, nil
}

// GetProfile returns the caller's account
func (m *MockAuthService) GetProfile(ctx context.Context, actor *domain.Actor) (*domain.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, actor)
	}
	return nil, domain.ErrUnauthorized
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
