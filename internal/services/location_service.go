package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/you/nirogsvc/domain"
)

// Validation messages returned by proximity search.
const (
	MsgCoordinatesRequired = "Latitude and longitude are required"
	MsgInvalidFacilityType = "Invalid facility type"
	MsgInvalidCoordinates  = "Invalid coordinates"
)

const (
	DefaultRadiusKm    = 10.0
	DefaultNearbyLimit = 20
	MaxNearbyLimit     = 100
	earthRadiusKm      = 6371.0
)

// LocationServiceImpl implements domain.LocationService
type LocationServiceImpl struct {
	facilities domain.FacilityRepository
}

// NewLocationService creates a proximity search over facilities
func NewLocationService(facilities domain.FacilityRepository) domain.LocationService {
	return &LocationServiceImpl{facilities: facilities}
}

// CalculateDistance returns the great-circle distance in kilometres between
// two points, rounded to two decimals.
func CalculateDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusKm*c*100) / 100
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// Nearby implements domain.LocationService
func (s *LocationServiceImpl) Nearby(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
	if q.Origin == nil {
		return nil, domain.NewValidationError("lat", MsgCoordinatesRequired)
	}
	if math.Abs(q.Origin.Lat) > 90 || math.Abs(q.Origin.Lng) > 180 {
		return nil, domain.NewValidationError("lat", MsgInvalidCoordinates)
	}

	facilityType := domain.NormalizeFacilityType(q.Type)
	var types []string
	switch {
	case facilityType == domain.FacilityAll:
		types = domain.FacilityTypes
	case domain.IsOneOf(facilityType, domain.FacilityTypes):
		types = []string{facilityType}
	default:
		return nil, domain.NewValidationError("type", MsgInvalidFacilityType)
	}

	radius := q.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}
	if limit > MaxNearbyLimit {
		limit = MaxNearbyLimit
	}
	perType := int(math.Ceil(float64(limit) / float64(len(types))))

	var results []*domain.NearbyFacility
	for _, t := range types {
		candidates, err := s.facilities.FindCandidates(ctx, t, limit*2)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s candidates: %w", t, err)
		}
		results = append(results, withinRadius(*q.Origin, candidates, radius, perType)...)
	}

	sortByDistance(results)
	if len(results) > limit {
		results = results[:limit]
	}

	return &domain.NearbyResult{
		Results:  results,
		Origin:   *q.Origin,
		RadiusKm: radius,
	}, nil
}

// withinRadius returns up to max facilities no farther than radius, nearest first.
func withinRadius(origin domain.GeoPoint, candidates []*domain.Facility, radius float64, max int) []*domain.NearbyFacility {
	var out []*domain.NearbyFacility
	for _, f := range candidates {
		if f.Latitude == nil || f.Longitude == nil {
			continue
		}
		d := CalculateDistance(origin.Lat, origin.Lng, *f.Latitude, *f.Longitude)
		if d <= radius {
			out = append(out, &domain.NearbyFacility{Facility: f, DistanceKm: d})
		}
	}
	sortByDistance(out)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func sortByDistance(fs []*domain.NearbyFacility) {
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].DistanceKm < fs[j].DistanceKm })
}
