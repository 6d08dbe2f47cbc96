package mocks

import (
	"context"

	"github.com/you/nirogsvc/domain"
)

// MockLocationService implements domain.LocationService for testing
type MockLocationService struct {
	NearbyFunc func(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error)
}

// NewMockLocationService creates a new MockLocationService with default behaviors
func NewMockLocationService() *MockLocationService {
	return &MockLocationService{}
}

func (m *MockLocationService) Nearby(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
	if m.NearbyFunc != nil {
		return m.NearbyFunc(ctx, q)
	}
	res := &domain.NearbyResult{Results: []*domain.NearbyFacility{}, RadiusKm: q.RadiusKm}
	if q.Origin != nil {
		res.Origin = *q.Origin
	}
	return res, nil
}

// Compile-time interface compliance verification
var _ domain.LocationService = (*MockLocationService)(nil)
