package mocks

import (
	"context"

	"github.com/you/nirogsvc/domain"
)

// MockFacilityRepository implements domain.FacilityRepository for testing
type MockFacilityRepository struct {
	FindCandidatesFunc func(ctx context.Context, facilityType string, limit int) ([]*domain.Facility, error)
	CreateFunc         func(ctx context.Context, f *domain.Facility) error
}

// NewMockFacilityRepository creates a new MockFacilityRepository with default behaviors
func NewMockFacilityRepository() *MockFacilityRepository {
	return &MockFacilityRepository{}
}

func (m *MockFacilityRepository) FindCandidates(ctx context.Context, facilityType string, limit int) ([]*domain.Facility, error) {
	if m.FindCandidatesFunc != nil {
		return m.FindCandidatesFunc(ctx, facilityType, limit)
	}
	return nil, nil
}

func (m *MockFacilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, f)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.FacilityRepository = (*MockFacilityRepository)(nil)
