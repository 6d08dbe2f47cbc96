package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/you/nirogsvc/domain"
)

// Validation messages returned by the identity operations.
const (
	MsgAllFieldsRequired   = "All fields are required"
	MsgInvalidEmail        = "Invalid email format"
	MsgInvalidPhone        = "Invalid phone number format"
	MsgInvalidRole         = "Invalid role"
	MsgCredentialsRequired = "Email/phone and password are required"
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	auditLogger domain.AuditLogger
	clock       domain.Clock
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	auditLogger domain.AuditLogger,
	clock domain.Clock,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		auditLogger: auditLogger,
		clock:       clock,
	}
}

// Register implements domain.AuthService
func (s *AuthServiceImpl) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	phone := domain.NormalizePhone(in.Phone)

	// Advisory; the unique indexes decide races.
	if _, err := s.userRepo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.userRepo.FindByPhone(ctx, phone); err == nil {
		return nil, domain.ErrPhoneTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}

	hashedPassword, err := s.passwordSvc.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	user := &domain.User{
		Email:        in.Email,
		Phone:        phone,
		PasswordHash: hashedPassword,
		Role:         in.Role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsVerified:   false,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, domain.NewAuditEvent(domain.UserRegistrationEvent, user.ID).
		WithEmail(user.Email).
		WithMetadata("role", user.Role))
	return result, nil
}

func validateRegistration(in domain.RegisterInput) error {
	if in.Email == "" || in.Phone == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return domain.NewValidationError("", MsgAllFieldsRequired)
	}
	if !domain.IsValidEmail(in.Email) {
		return domain.NewValidationError("email", MsgInvalidEmail)
	}
	if !domain.IsValidPhone(in.Phone) {
		return domain.NewValidationError("phone", MsgInvalidPhone)
	}
	if check := domain.IsValidPassword(in.Password); !check.Valid {
		return domain.NewValidationError("password", check.Errors[0])
	}
	if !domain.IsOneOf(in.Role, domain.SelfRegisterRoles) {
		return domain.NewValidationError("role", MsgInvalidRole)
	}
	return nil
}

// Login implements domain.AuthService. Every credential failure is reported
// as domain.ErrInvalidCredentials.
func (s *AuthServiceImpl) Login(ctx context.Context, identifier, password string) (*domain.AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, domain.NewValidationError("identifier", MsgCredentialsRequired)
	}

	var (
		user *domain.User
		err  error
	)
	if domain.IsValidEmail(identifier) {
		user, err = s.userRepo.FindByEmail(ctx, identifier)
	} else {
		user, err = s.userRepo.FindByPhone(ctx, domain.NormalizePhone(identifier))
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.loginFailed(ctx, 0, identifier, "unknown identifier")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		s.loginFailed(ctx, user.ID, identifier, "wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.loginFailed(ctx, user.ID, identifier, "inactive account")
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent, user.ID).WithEmail(user.Email))
	return result, nil
}

func (s *AuthServiceImpl) loginFailed(ctx context.Context, userID uint, identifier, reason string) {
	s.logEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, userID).
		WithMetadata("identifier", identifier).
		WithError(errors.New(reason)))
}

func (s *AuthServiceImpl) issue(user *domain.User) (*domain.AuthResult, error) {
	token, expiresAt, err := s.tokenSvc.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &domain.AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout implements domain.AuthService. Sessions are stateless; the
// transport discards the credential.
func (s *AuthServiceImpl) Logout(ctx context.Context, actor *domain.Actor) error {
	if actor == nil || actor.UserID == 0 {
		return domain.ErrUnauthorized
	}
	s.logEvent(ctx, domain.NewAuditEvent(domain.UserLogoutEvent, actor.UserID).WithEmail(actor.Email))
	return nil
}

// ResolveSession implements domain.AuthService. A missing, malformed or
// expired token, or one whose user is gone or inactive, yields (nil, nil).
func (s *AuthServiceImpl) ResolveSession(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.tokenSvc.Validate(token)
	if err != nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// GetProfile implements domain.AuthService
func (s *AuthServiceImpl) GetProfile(ctx context.Context, actor *domain.Actor) (*domain.User, error) {
	if actor == nil || actor.UserID == 0 {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthServiceImpl) logEvent(ctx context.Context, event *domain.AuditEvent) {
	if s.auditLogger == nil {
		return
	}
	_ = s.auditLogger.LogEvent(ctx, event.WithClientContext(domain.ClientContextFrom(ctx)))
}
