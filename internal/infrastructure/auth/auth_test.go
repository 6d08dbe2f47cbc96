package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/nirogsvc/domain"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", "nirogsvc", 7*24*time.Hour)
	user := &domain.User{ID: 42, Email: "doc@nirog.in", Role: domain.RoleDoctor}

	token, exp, err := svc.Generate(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "doc@nirog.in", claims.Email)
	assert.Equal(t, domain.RoleDoctor, claims.Role)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt)
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret", "nirogsvc", time.Hour)
	user := &domain.User{ID: 1, Role: domain.RolePatient}

	a, _, err := svc.Generate(user)
	require.NoError(t, err)
	b, _, err := svc.Generate(user)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestJWTService_Validate_Failures(t *testing.T) {
	svc := NewJWTService("test-secret", "nirogsvc", time.Hour).(*JWTServiceImpl)
	user := &domain.User{ID: 9, Role: domain.RolePatient}
	good, _, err := svc.Generate(user)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := svc.Validate("")
		assert.ErrorIs(t, err, domain.ErrTokenMalformed)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-jwt")
		assert.ErrorIs(t, err, domain.ErrTokenMalformed)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService("other-secret", "nirogsvc", time.Hour)
		_, err := other.Validate(good)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService("test-secret", "someone-else", time.Hour)
		_, err := other.Validate(good)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewJWTService("test-secret", "nirogsvc", time.Hour).(*JWTServiceImpl)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := past.Generate(user)
		require.NoError(t, err)

		_, err = svc.Validate(old)
		assert.ErrorIs(t, err, domain.ErrTokenExpired)
	})

	t.Run("unsigned algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 9, "role": "admin"})
		s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Validate(s)
		assert.Error(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		_, _, err := svc.Generate(nil)
		assert.Error(t, err)
	})
}

func TestPasswordService(t *testing.T) {
	svc := NewPasswordServiceWithCost(4)

	hash, err := svc.Hash("Abc123!@")
	require.NoError(t, err)
	assert.NotEqual(t, "Abc123!@", hash)
	assert.True(t, svc.Verify(hash, "Abc123!@"))
	assert.False(t, svc.Verify(hash, "abc123!@"))
	assert.False(t, svc.Verify("not-a-hash", "Abc123!@"))
}

func TestPasswordService_DefaultCost(t *testing.T) {
	svc := NewPasswordService().(*PasswordServiceImpl)
	assert.Equal(t, 12, svc.cost)
}

const rbacModelPath = "../../../config/rbac_model.conf"

func setupCasbinDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection, one in-memory database; this also matches the e2e server.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestCasbinService_SeedDefaultPolicies(t *testing.T) {
	db := setupCasbinDB(t)
	svc, err := NewCasbinService(db, rbacModelPath)
	require.NoError(t, err)

	require.NoError(t, svc.SeedDefaultPolicies(zerolog.Nop()))
	policies, err := svc.E.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, policies, len(DefaultPolicies))

	tests := []struct {
		sub, obj, act string
		allowed       bool
	}{
		{"role_admin", "/api/admin/doctors", "GET", true},
		{"role_admin", "/api/admin/doctors/5/verify", "POST", true},
		{"role_doctor", "/api/admin/doctors", "GET", false},
		{"role_doctor", "/api/doctors/verify", "POST", true},
		{"role_patient", "/api/doctors/verify", "POST", false},
		{"role_patient", "/api/doctors/verify", "GET", true},
		{"role_student", "/api/auth/me", "GET", true},
		{"role_student", "/api/auth/logout", "POST", true},
	}
	for _, tt := range tests {
		ok, err := svc.E.Enforce(tt.sub, tt.obj, tt.act)
		require.NoError(t, err)
		assert.Equal(t, tt.allowed, ok, "%s %s %s", tt.sub, tt.act, tt.obj)
	}

	// Seeding again is a no-op.
	require.NoError(t, svc.SeedDefaultPolicies(zerolog.Nop()))
	policies, err = svc.E.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, policies, len(DefaultPolicies))

	var rows int64
	require.NoError(t, db.Table("casbin_rule").Count(&rows).Error)
	assert.Equal(t, int64(len(DefaultPolicies)), rows)
}

func TestCasbinService_PoliciesSurviveRestart(t *testing.T) {
	db := setupCasbinDB(t)
	first, err := NewCasbinService(db, rbacModelPath)
	require.NoError(t, err)
	require.NoError(t, first.SeedDefaultPolicies(zerolog.Nop()))

	_, err = first.E.RemovePolicy("role_doctor", "/api/doctors/verify", "POST")
	require.NoError(t, err)
	_, err = first.E.AddPolicy("role_student", "/api/doctors/verify", "POST")
	require.NoError(t, err)

	second, err := NewCasbinService(db, rbacModelPath)
	require.NoError(t, err)
	require.NoError(t, second.SeedDefaultPolicies(zerolog.Nop()))

	ok, err := second.E.Enforce("role_doctor", "/api/doctors/verify", "POST")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = second.E.Enforce("role_student", "/api/doctors/verify", "POST")
	require.NoError(t, err)
	assert.True(t, ok)
}
