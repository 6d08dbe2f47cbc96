package e2e

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

const adminPassword = "Adm1n!secret"

// registerAs registers a new account and returns its logged-in client and id.
func registerAs(t *testing.T, ts *TestServer, email, phone, role string) (*Client, uint) {
	t.Helper()
	c := ts.NewClient(t)
	resp := c.Do(t, http.MethodPost, "/api/auth/register", registerBody(email, phone, role))
	require.Equal(t, http.StatusCreated, resp.Status, resp.Raw)
	id := resp.Body["user"].(map[string]interface{})["id"].(float64)
	return c, uint(id)
}

// loginAdmin seeds an admin account and returns its logged-in client.
func loginAdmin(t *testing.T, ts *TestServer) *Client {
	t.Helper()
	ts.SeedAdmin(t, "admin@nirog.in", "9999900000", adminPassword)
	c := ts.NewClient(t)
	resp := c.Do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"identifier": "admin@nirog.in", "password": adminPassword,
	})
	require.Equal(t, http.StatusOK, resp.Status, resp.Raw)
	return c
}

func profileFields(regNo string) map[string]string {
	return map[string]string{
		"specialization":     "Cardiology",
		"qualification":      "MBBS, MD",
		"experienceYears":    "8",
		"registrationNumber": regNo,
		"consultationFee":    "500",
		"bio":                "Interventional cardiologist",
		"languagesSpoken":    `["English","Kannada"]`,
		"availableDays":      `["Mon","Wed","Fri"]`,
		"availableHours":     `{"start":"09:00","end":"13:00"}`,
	}
}

func requiredDocuments() map[string]string {
	return map[string]string{
		"govtId":                  "aadhaar.pdf",
		"degreeCertificate":       "mbbs.pdf",
		"registrationCertificate": "mci.pdf",
	}
}

// submitCase submits a complete packet for the caller.
func submitCase(t *testing.T, c *Client, userID uint, regNo string) *Response {
	t.Helper()
	fields := profileFields(regNo)
	if userID != 0 {
		fields["userId"] = fmt.Sprint(userID)
	}
	return c.Upload(t, "/api/doctors/verify", fields, requiredDocuments())
}
