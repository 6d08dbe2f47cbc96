package mocks

import (
	"context"
	"time"

	"github.com/you/nirogsvc/domain"
)

// MockVerificationRepository implements domain.VerificationRepository for testing
type MockVerificationRepository struct {
	CreateFunc       func(ctx context.Context, c *domain.VerificationCase) error
	FindByIDFunc     func(ctx context.Context, id uint) (*domain.VerificationCase, error)
	FindByUserIDFunc func(ctx context.Context, userID uint) (*domain.VerificationCase, error)
	ApproveFunc      func(ctx context.Context, id, adminID uint, at time.Time) (*domain.VerificationCase, error)
	RejectFunc       func(ctx context.Context, id, adminID uint, reason string, at time.Time) (*domain.VerificationCase, error)
	ListFunc         func(ctx context.Context, filter domain.CaseFilter) ([]*domain.VerificationCase, int64, error)
}

// NewMockVerificationRepository creates a new MockVerificationRepository with default behaviors
func NewMockVerificationRepository() *MockVerificationRepository {
	return &MockVerificationRepository{}
}

func (m *MockVerificationRepository) Create(ctx context.Context, c *domain.VerificationCase) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	c.ID = 1
	return nil
}

func (m *MockVerificationRepository) FindByID(ctx context.Context, id uint) (*domain.VerificationCase, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrCaseNotFound
}

func (m *MockVerificationRepository) FindByUserID(ctx context.Context, userID uint) (*domain.VerificationCase, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, domain.ErrCaseNotFound
}

func (m *MockVerificationRepository) Approve(ctx context.Context, id, adminID uint, at time.Time) (*domain.VerificationCase, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, id, adminID, at)
	}
	return nil, domain.ErrCaseNotFound
}

func (m *MockVerificationRepository) Reject(ctx context.Context, id, adminID uint, reason string, at time.Time) (*domain.VerificationCase, error) {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, id, adminID, reason, at)
	}
	return nil, domain.ErrCaseNotFound
}

func (m *MockVerificationRepository) List(ctx context.Context, filter domain.CaseFilter) ([]*domain.VerificationCase, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

// Compile-time interface compliance verification
var _ domain.VerificationRepository = (*MockVerificationRepository)(nil)
