package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasPolicy(resp *Response, role, resource, action string) bool {
	for _, p := range resp.Body["policies"].([]interface{}) {
		m := p.(map[string]interface{})
		if m["role"] == role && m["resource"] == resource && m["action"] == action {
			return true
		}
	}
	return false
}

func TestPolicies_RuntimeChanges(t *testing.T) {
	ts := NewTestServer(t)
	admin := loginAdmin(t, ts)
	doctor, doctorID := registerAs(t, ts, "ravi@nirog.in", "9812345678", "doctor")
	submitRule := map[string]string{"role": "doctor", "resource": "/api/doctors/verify", "action": "POST"}

	resp := admin.Do(t, http.MethodGet, "/api/admin/policies", nil)
	require.Equal(t, http.StatusOK, resp.Status, resp.Raw)
	assert.True(t, hasPolicy(resp, "role_doctor", "/api/doctors/verify", "POST"))
	assert.True(t, hasPolicy(resp, "role_admin", "/api/admin/*", "(GET|POST|PUT|DELETE)"))

	resp = admin.Do(t, http.MethodDelete, "/api/admin/policies", submitRule)
	require.Equal(t, http.StatusNoContent, resp.Status, resp.Raw)

	resp = admin.Do(t, http.MethodGet, "/api/admin/policies", nil)
	assert.False(t, hasPolicy(resp, "role_doctor", "/api/doctors/verify", "POST"))

	resp = submitCase(t, doctor, doctorID, "KMC-9001")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = admin.Do(t, http.MethodPost, "/api/admin/policies", submitRule)
	require.Equal(t, http.StatusNoContent, resp.Status, resp.Raw)

	resp = submitCase(t, doctor, doctorID, "KMC-9001")
	assert.Equal(t, http.StatusCreated, resp.Status, resp.Raw)
}

func TestPolicies_Validation(t *testing.T) {
	ts := NewTestServer(t)
	admin := loginAdmin(t, ts)

	resp := admin.Do(t, http.MethodPost, "/api/admin/policies", map[string]string{"role": "doctor"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Role, resource and action are required", resp.Error())
}

func TestPolicies_AdminOnly(t *testing.T) {
	ts := NewTestServer(t)
	patient, _ := registerAs(t, ts, "asha@nirog.in", "9876543210", "patient")

	resp := patient.Do(t, http.MethodGet, "/api/admin/policies", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = patient.Do(t, http.MethodPost, "/api/admin/policies",
		map[string]string{"role": "patient", "resource": "/api/admin/*", "action": "GET"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = ts.NewClient(t).Do(t, http.MethodGet, "/api/admin/policies", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}
