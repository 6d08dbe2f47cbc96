package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/mocks"
)

func ptr(f float64) *float64 { return &f }

// facilityAt places a facility roughly km kilometres north of the origin (0, 77.59).
func facilityAt(id uint, kind string, km float64) *domain.Facility {
	return &domain.Facility{
		ID:        id,
		Type:      kind,
		Name:      fmt.Sprintf("%s-%d", kind, id),
		Latitude:  ptr(12.97 + km/111.19),
		Longitude: ptr(77.59),
		IsActive:  true,
	}
}

var bengaluru = &domain.GeoPoint{Lat: 12.97, Lng: 77.59}

func TestCalculateDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
	}{
		{name: "same point", lat1: 12.97, lng1: 77.59, lat2: 12.97, lng2: 77.59, want: 0},
		{name: "one degree of latitude", lat1: 0, lng1: 0, lat2: 1, lng2: 0, want: 111.19},
		{name: "bengaluru to mysuru", lat1: 12.9716, lng1: 77.5946, lat2: 12.2958, lng2: 76.6394, want: 128.02},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateDistance(tt.lat1, tt.lng1, tt.lat2, tt.lng2), 0.01)
		})
	}
	assert.Equal(t, CalculateDistance(1, 2, 3, 4), CalculateDistance(3, 4, 1, 2))
}

func TestLocationServiceImpl_Nearby(t *testing.T) {
	byType := map[string][]*domain.Facility{
		domain.FacilityHospital: {facilityAt(1, "hospital", 4), facilityAt(2, "hospital", 1), facilityAt(3, "hospital", 25)},
		domain.FacilityLab:      {facilityAt(4, "lab", 2), facilityAt(5, "lab", 3)},
		domain.FacilityPharmacy: {facilityAt(6, "pharmacy", 0.5), {ID: 7, Type: "pharmacy", IsActive: true}},
	}

	tests := []struct {
		name      string
		query     domain.NearbyQuery
		wantIDs   []uint
		wantLimit map[string]int
		wantMsg   string
	}{
		{
			name:      "all types with defaults",
			query:     domain.NearbyQuery{Origin: bengaluru},
			wantIDs:   []uint{6, 2, 4, 5, 1},
			wantLimit: map[string]int{"hospital": 40, "lab": 40, "pharmacy": 40},
		},
		{
			name:      "per type cap then global limit",
			query:     domain.NearbyQuery{Origin: bengaluru, Limit: 2},
			wantIDs:   []uint{6, 2},
			wantLimit: map[string]int{"hospital": 4, "lab": 4, "pharmacy": 4},
		},
		{
			name:      "single plural type",
			query:     domain.NearbyQuery{Origin: bengaluru, Type: "hospitals", RadiusKm: 30},
			wantIDs:   []uint{2, 1, 3},
			wantLimit: map[string]int{"hospital": 40},
		},
		{
			name:    "narrow radius",
			query:   domain.NearbyQuery{Origin: bengaluru, Type: "lab", RadiusKm: 1},
			wantIDs: []uint{},
		},
		{
			name:    "missing origin",
			query:   domain.NearbyQuery{Type: "all"},
			wantMsg: MsgCoordinatesRequired,
		},
		{
			name:    "unknown type",
			query:   domain.NearbyQuery{Origin: bengaluru, Type: "clinic"},
			wantMsg: MsgInvalidFacilityType,
		},
		{
			name:    "latitude out of range",
			query:   domain.NearbyQuery{Origin: &domain.GeoPoint{Lat: 91}},
			wantMsg: MsgInvalidCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockFacilityRepository()
			limits := map[string]int{}
			repo.FindCandidatesFunc = func(ctx context.Context, kind string, limit int) ([]*domain.Facility, error) {
				limits[kind] = limit
				return byType[kind], nil
			}
			svc := NewLocationService(repo)

			res, err := svc.Nearby(context.Background(), tt.query)
			if tt.wantMsg != "" {
				assert.EqualError(t, err, tt.wantMsg)
				assert.Equal(t, domain.KindValidation, domain.KindOf(err))
				return
			}
			require.NoError(t, err)

			ids := make([]uint, 0, len(res.Results))
			for i, r := range res.Results {
				ids = append(ids, r.Facility.ID)
				if i > 0 {
					assert.LessOrEqual(t, res.Results[i-1].DistanceKm, r.DistanceKm)
				}
			}
			assert.Equal(t, tt.wantIDs, ids)
			if tt.wantLimit != nil {
				assert.Equal(t, tt.wantLimit, limits)
			}
			assert.Equal(t, *tt.query.Origin, res.Origin)
		})
	}
}

func TestLocationServiceImpl_Nearby_ZeroOriginIsValid(t *testing.T) {
	repo := mocks.NewMockFacilityRepository()
	repo.FindCandidatesFunc = func(ctx context.Context, kind string, limit int) ([]*domain.Facility, error) {
		return []*domain.Facility{{ID: 1, Type: kind, Latitude: ptr(0.01), Longitude: ptr(0)}}, nil
	}

	res, err := NewLocationService(repo).Nearby(context.Background(), domain.NearbyQuery{
		Origin: &domain.GeoPoint{Lat: 0, Lng: 0},
		Type:   domain.FacilityLab,
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 1.11, res.Results[0].DistanceKm)
	assert.Equal(t, DefaultRadiusKm, res.RadiusKm)
}

func TestLocationServiceImpl_Nearby_RepositoryError(t *testing.T) {
	repo := mocks.NewMockFacilityRepository()
	repo.FindCandidatesFunc = func(ctx context.Context, kind string, limit int) ([]*domain.Facility, error) {
		return nil, errors.New("connection reset")
	}

	_, err := NewLocationService(repo).Nearby(context.Background(), domain.NearbyQuery{Origin: bengaluru})
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestLocationServiceImpl_Nearby_LimitIsCapped(t *testing.T) {
	var requested []int
	repo := mocks.NewMockFacilityRepository()
	repo.FindCandidatesFunc = func(ctx context.Context, kind string, limit int) ([]*domain.Facility, error) {
		requested = append(requested, limit)
		return []*domain.Facility{facilityAt(1, kind, 1)}, nil
	}
	svc := NewLocationService(repo)

	for _, limit := range []int{MaxNearbyLimit + 1, 1_000_000_000, math.MaxInt} {
		requested = nil
		res, err := svc.Nearby(context.Background(), domain.NearbyQuery{
			Origin: bengaluru,
			Type:   domain.FacilityLab,
			Limit:  limit,
		})
		require.NoError(t, err, "limit=%d", limit)
		assert.Len(t, res.Results, 1)
		assert.Equal(t, []int{2 * MaxNearbyLimit}, requested, "limit=%d", limit)
	}
}
