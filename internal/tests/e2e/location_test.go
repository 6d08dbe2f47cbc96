package e2e

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/app"
	testconfig "github.com/you/nirogsvc/internal/tests/config"
)

// MG Road, Bengaluru.
const nearbyBase = "/api/location/nearby?lat=12.9756&lng=77.6050"

func seedFacilities(t *testing.T, ts *TestServer) {
	t.Helper()
	f, err := os.Open(filepath.Join(testconfig.GetProjectRoot(), "config", "facilities.yml"))
	require.NoError(t, err)
	defer f.Close()
	n, err := app.SeedFacilities(context.Background(), ts.Container.FacilityRepo, f)
	require.NoError(t, err)
	require.Equal(t, 6, n)
}

func names(resp *Response) []string {
	var out []string
	for _, r := range resp.Body["results"].([]interface{}) {
		out = append(out, r.(map[string]interface{})["name"].(string))
	}
	return out
}

func TestNearby(t *testing.T) {
	ts := NewTestServer(t)
	seedFacilities(t, ts)
	c := ts.NewClient(t)

	t.Run("all types within the default radius", func(t *testing.T) {
		resp := c.Do(t, http.MethodGet, nearbyBase, nil)
		require.Equal(t, http.StatusOK, resp.Status, resp.Raw)
		assert.Equal(t, float64(6), resp.Body["total"])
		assert.Equal(t, float64(10), resp.Body["radius"])
		assert.Equal(t, "MG Road Medicals", names(resp)[0])

		first := resp.Body["results"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, float64(0), first["distance"])
		assert.Equal(t, "pharmacy", first["type"])
	})

	t.Run("type filter is nearest first", func(t *testing.T) {
		resp := c.Do(t, http.MethodGet, nearbyBase+"&type=Lab", nil)
		require.Equal(t, http.StatusOK, resp.Status, resp.Raw)
		assert.Equal(t, []string{"Indiranagar Diagnostics", "Jayanagar Path Labs"}, names(resp))
	})

	t.Run("radius", func(t *testing.T) {
		resp := c.Do(t, http.MethodGet, nearbyBase+"&radius=1", nil)
		require.Equal(t, http.StatusOK, resp.Status, resp.Raw)
		assert.Equal(t, []string{"MG Road Medicals"}, names(resp))
	})

	t.Run("limit", func(t *testing.T) {
		resp := c.Do(t, http.MethodGet, nearbyBase+"&limit=2", nil)
		require.Equal(t, http.StatusOK, resp.Status, resp.Raw)
		assert.Len(t, names(resp), 2)
	})

	t.Run("huge limit is clamped", func(t *testing.T) {
		resp := c.Do(t, http.MethodGet, nearbyBase+"&limit=9223372036854775807", nil)
		require.Equal(t, http.StatusOK, resp.Status, resp.Raw)
		assert.Len(t, names(resp), 6)
	})

	t.Run("nothing nearby", func(t *testing.T) {
		resp := c.Do(t, http.MethodGet, "/api/location/nearby?lat=28.6139&lng=77.2090", nil)
		require.Equal(t, http.StatusOK, resp.Status, resp.Raw)
		assert.Equal(t, float64(0), resp.Body["total"])
		assert.Empty(t, resp.Body["results"])
	})

	t.Run("bad input", func(t *testing.T) {
		resp := c.Do(t, http.MethodGet, nearbyBase+"&type=clinic", nil)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, "Invalid facility type", resp.Error())

		resp = c.Do(t, http.MethodGet, "/api/location/nearby?lat=12.9", nil)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, "Latitude and longitude are required", resp.Error())

		resp = c.Do(t, http.MethodGet, "/api/location/nearby?lat=95&lng=77", nil)
		assert.Equal(t, "Invalid coordinates", resp.Error())
	})
}

func TestNearby_SeesNewFacilities(t *testing.T) {
	ts := NewTestServer(t)
	seedFacilities(t, ts)
	c := ts.NewClient(t)

	resp := c.Do(t, http.MethodGet, nearbyBase+"&type=pharmacy", nil)
	require.Equal(t, http.StatusOK, resp.Status, resp.Raw)
	require.Len(t, names(resp), 2)

	lat, lng := 12.9760, 77.6055
	require.NoError(t, ts.Container.FacilityRepo.Create(context.Background(), &domain.Facility{
		Type: domain.FacilityPharmacy, Name: "Brigade Road Chemists",
		Latitude: &lat, Longitude: &lng, IsActive: true,
	}))

	resp = c.Do(t, http.MethodGet, nearbyBase+"&type=pharmacy", nil)
	require.Equal(t, http.StatusOK, resp.Status, resp.Raw)
	assert.Equal(t, []string{"MG Road Medicals", "Brigade Road Chemists", "Malleshwaram Pharmacy"}, names(resp))
}
