package mocks

import (
	"context"

	"github.com/you/nirogsvc/domain"
)

// MockVerificationService implements domain.VerificationService for testing
type MockVerificationService struct {
	SubmitFunc  func(ctx context.Context, actor *domain.Actor, in domain.SubmitCaseInput) (*domain.VerificationCase, error)
	ApproveFunc func(ctx context.Context, actor *domain.Actor, caseID uint) (*domain.VerificationCase, error)
	RejectFunc  func(ctx context.Context, actor *domain.Actor, caseID uint, reason string) (*domain.VerificationCase, error)
	DecideFunc  func(ctx context.Context, actor *domain.Actor, caseID uint, action, reason string) (*domain.VerificationCase, error)
	ListFunc    func(ctx context.Context, actor *domain.Actor, in domain.ListCasesInput) (*domain.CasePage, error)
	GetOwnFunc  func(ctx context.Context, actor *domain.Actor) (*domain.CaseWithOwner, error)
}

// NewMockVerificationService creates a new MockVerificationService with default behaviors
func NewMockVerificationService() *MockVerificationService {
	return &MockVerificationService{}
}

func (m *MockVerificationService) Submit(ctx context.Context, actor *domain.Actor, in domain.SubmitCaseInput) (*domain.VerificationCase, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, actor, in)
	}
	return &domain.VerificationCase{ID: 1, UserID: in.UserID, Profile: in.Profile, Status: domain.CaseStatusPending}, nil
}

func (m *MockVerificationService) Approve(ctx context.Context, actor *domain.Actor, caseID uint) (*domain.VerificationCase, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, actor, caseID)
	}
	return nil, domain.ErrCaseNotFound
}

func (m *MockVerificationService) Reject(ctx context.Context, actor *domain.Actor, caseID uint, reason string) (*domain.VerificationCase, error) {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, actor, caseID, reason)
	}
	return nil, domain.ErrCaseNotFound
}

func (m *MockVerificationService) Decide(ctx context.Context, actor *domain.Actor, caseID uint, action, reason string) (*domain.VerificationCase, error) {
	if m.DecideFunc != nil {
		return m.DecideFunc(ctx, actor, caseID, action, reason)
	}
	return nil, domain.ErrCaseNotFound
}

func (m *MockVerificationService) List(ctx context.Context, actor *domain.Actor, in domain.ListCasesInput) (*domain.CasePage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, actor, in)
	}
	return &domain.CasePage{Page: 1, PageSize: 10}, nil
}

func (m *MockVerificationService) GetOwn(ctx context.Context, actor *domain.Actor) (*domain.CaseWithOwner, error) {
	if m.GetOwnFunc != nil {
		return m.GetOwnFunc(ctx, actor)
	}
	return nil, domain.ErrCaseNotFound
}

// Compile-time interface compliance verification
var _ domain.VerificationService = (*MockVerificationService)(nil)
