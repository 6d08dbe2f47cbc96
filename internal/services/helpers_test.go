package services

import (
	"testing"
	"time"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/infrastructure/clock"
)

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func newTestClock(t *testing.T) *clock.ManagedClock {
	t.Helper()
	return clock.NewManaged(testNow)
}

// createValidUser creates an active patient for testing
func createValidUser(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:           1,
		Email:        "asha@nirog.in",
		Phone:        "9876543210",
		PasswordHash: "hashed_Secret1!x",
		Role:         domain.RolePatient,
		FirstName:    "Asha",
		LastName:     "Rao",
		IsActive:     true,
		CreatedAt:    testNow.Add(-24 * time.Hour),
		UpdatedAt:    testNow.Add(-1 * time.Hour),
	}
}

func doctorActor() *domain.Actor {
	return &domain.Actor{UserID: 10, Email: "dr.mehta@nirog.in", Role: domain.RoleDoctor}
}

func adminActor() *domain.Actor {
	return &domain.Actor{UserID: 99, Email: "admin@nirog.in", Role: domain.RoleAdmin}
}
