package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
)

// LocationHandlers serves proximity search
type LocationHandlers struct {
	svc    domain.LocationService
	logger zerolog.Logger
}

// NewLocationHandlers creates proximity search handlers
func NewLocationHandlers(svc domain.LocationService, logger zerolog.Logger) *LocationHandlers {
	return &LocationHandlers{svc: svc, logger: logger}
}

// Nearby lists facilities around ?lat=&lng=
func (h *LocationHandlers) Nearby(c *gin.Context) {
	q := domain.NearbyQuery{Type: c.DefaultQuery("type", domain.FacilityAll)}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr == nil && lngErr == nil {
		q.Origin = &domain.GeoPoint{Lat: lat, Lng: lng}
	}
	if r, err := strconv.ParseFloat(c.Query("radius"), 64); err == nil {
		q.RadiusKm = r
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil {
		q.Limit = l
	}

	res, err := h.svc.Nearby(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	results := make([]gin.H, 0, len(res.Results))
	for _, r := range res.Results {
		f := r.Facility
		results = append(results, gin.H{
			"id":                f.ID,
			"name":              f.Name,
			"address":           f.Address,
			"phone":             f.Phone,
			"email":             f.Email,
			"website":           f.Website,
			"latitude":          f.Latitude,
			"longitude":         f.Longitude,
			"timings":           f.Timings,
			"services":          f.Services,
			"rating":            f.Rating,
			"total_reviews":     f.TotalReviews,
			"image_url":         f.ImageURL,
			"has_home_delivery": f.HasHomeDelivery,
			"type":              f.Type,
			"distance":          r.DistanceKm,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"results":  results,
		"total":    len(results),
		"location": res.Origin,
		"radius":   res.RadiusKm,
	})
}
