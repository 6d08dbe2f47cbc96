package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/nirogsvc/domain"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// Every pooled connection would get its own empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&DBUser{}, &DBDoctorProfile{}, &DBFacility{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func newTestUser(email, phone, role string) *domain.User {
	return &domain.User{
		Email:        email,
		Phone:        phone,
		PasswordHash: "hashed_password",
		Role:         role,
		FirstName:    "Asha",
		LastName:     "Verma",
		IsActive:     true,
	}
}

func TestUserRepositoryImpl_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newTestUser("asha@nirog.in", "9876543210", domain.RolePatient)
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	tests := []struct {
		name string
		find func() (*domain.User, error)
	}{
		{name: "by email", find: func() (*domain.User, error) { return repo.FindByEmail(ctx, "asha@nirog.in") }},
		{name: "by phone", find: func() (*domain.User, error) { return repo.FindByPhone(ctx, "9876543210") }},
		{name: "by id", find: func() (*domain.User, error) { return repo.FindByID(ctx, user.ID) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.find()
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
			assert.Equal(t, "asha@nirog.in", got.Email)
			assert.Equal(t, "9876543210", got.Phone)
			assert.Equal(t, "hashed_password", got.PasswordHash)
			assert.Equal(t, domain.RolePatient, got.Role)
			assert.Equal(t, "Asha", got.FirstName)
			assert.Equal(t, "Verma", got.LastName)
			assert.True(t, got.IsActive)
			assert.False(t, got.IsVerified)
		})
	}
}

func TestUserRepositoryImpl_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "missing@nirog.in")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByPhone(ctx, "9999999999")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepositoryImpl_UniqueViolations(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("first@nirog.in", "9876543210", domain.RolePatient)))

	tests := []struct {
		name        string
		user        *domain.User
		expectedErr error
	}{
		{
			name:        "duplicate email",
			user:        newTestUser("first@nirog.in", "9123456780", domain.RoleDoctor),
			expectedErr: domain.ErrEmailTaken,
		},
		{
			name:        "duplicate phone",
			user:        newTestUser("second@nirog.in", "9876543210", domain.RoleDoctor),
			expectedErr: domain.ErrPhoneTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		})
	}
}

func TestUserRepositoryImpl_FindByIDs(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	a := newTestUser("a@nirog.in", "9000000001", domain.RoleDoctor)
	b := newTestUser("b@nirog.in", "9000000002", domain.RoleDoctor)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	got, err := repo.FindByIDs(ctx, []uint{a.ID, b.ID, 999})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "a@nirog.in", got[a.ID].Email)
	assert.Equal(t, "b@nirog.in", got[b.ID].Email)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserRepositoryImpl_Update(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := newTestUser("upd@nirog.in", "9000000003", domain.RoleDoctor)
	require.NoError(t, repo.Create(ctx, user))

	user.IsVerified = true
	user.FirstName = "Ravi"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Equal(t, "Ravi", got.FirstName)
	assert.Equal(t, user.CreatedAt.Unix(), got.CreatedAt.Unix())
}
