package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/mocks"
)

// createPolicyServiceForTest creates a PolicyService with mock Casbin enforcer
func createPolicyServiceForTest(t *testing.T) (domain.PolicyService, *mocks.MockCasbinEnforcer) {
	t.Helper()
	enforcer := mocks.NewMockCasbinEnforcer()
	return NewPolicyServiceWithEnforcer(enforcer), enforcer
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "role_doctor", Subject("doctor"))
	assert.Equal(t, "role_admin", Subject("role_admin"))
}

func TestPolicyServiceImpl_AddPolicy(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		resource  string
		action    string
		setupMock func(*mocks.MockCasbinEnforcer)
		wantErr   string
	}{
		{
			name:     "adds prefixed rule",
			role:     "student",
			resource: "/api/location/nearby",
			action:   "GET",
		},
		{
			name:     "incomplete rule",
			role:     "student",
			resource: "",
			action:   "GET",
			wantErr:  MsgPolicyFieldsRequired,
		},
		{
			name:     "adapter failure",
			role:     "student",
			resource: "/api/x",
			action:   "GET",
			setupMock: func(e *mocks.MockCasbinEnforcer) {
				e.AddPolicyFunc = func(params ...interface{}) (bool, error) {
					return false, errors.New("db locked")
				}
			},
			wantErr: "add policy: db locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, enforcer := createPolicyServiceForTest(t)
			if tt.setupMock != nil {
				tt.setupMock(enforcer)
			}

			err := svc.AddPolicy(tt.role, tt.resource, tt.action)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, svc.GetPolicies(), []string{"role_" + tt.role, tt.resource, tt.action})
		})
	}
}

func TestPolicyServiceImpl_RemoveAndCheck(t *testing.T) {
	svc, _ := createPolicyServiceForTest(t)

	ok, err := svc.CheckPermission(domain.RoleDoctor, "/api/doctors/verify", "POST")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckPermission(domain.RolePatient, "/api/doctors/verify", "POST")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CheckPermission(domain.RoleAdmin, "/api/admin/doctors", "GET")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.RemovePolicy(domain.RoleDoctor, "/api/doctors/verify", "POST"))

	ok, err = svc.CheckPermission(domain.RoleDoctor, "/api/doctors/verify", "POST")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, svc.GetPolicies(), 1)

	assert.EqualError(t, svc.RemovePolicy("", "/x", "GET"), MsgPolicyFieldsRequired)
}
