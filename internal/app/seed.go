package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/services"
)

// AdminSeed describes the bootstrap administrator. Admins cannot self-register.
type AdminSeed struct {
	Email     string
	Phone     string
	Password  string
	FirstName string
	LastName  string
}

// SeedAdmin creates an active, verified admin account. An existing account
// with the same email is returned unchanged with created=false.
func SeedAdmin(ctx context.Context, users domain.UserRepository, passwords domain.PasswordService, in AdminSeed) (user *domain.User, created bool, err error) {
	email := strings.TrimSpace(in.Email)
	if !domain.IsValidEmail(email) {
		return nil, false, domain.NewValidationError("email", services.MsgInvalidEmail)
	}
	phone := domain.NormalizePhone(in.Phone)
	if !domain.IsValidPhone(phone) {
		return nil, false, domain.NewValidationError("phone", services.MsgInvalidPhone)
	}
	if check := domain.IsValidPassword(in.Password); !check.Valid {
		return nil, false, domain.NewValidationError("password", check.Errors[0])
	}

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, false, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := passwords.Hash(in.Password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}
	firstName := in.FirstName
	if firstName == "" {
		firstName = "Nirog"
	}
	lastName := in.LastName
	if lastName == "" {
		lastName = "Admin"
	}

	user = &domain.User{
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		FirstName:    firstName,
		LastName:     lastName,
		IsVerified:   true,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// facilitySeed is one entry of a facilities YAML file.
type facilitySeed struct {
	Type            string   `yaml:"type"`
	Name            string   `yaml:"name"`
	Address         string   `yaml:"address"`
	Phone           string   `yaml:"phone"`
	Email           string   `yaml:"email"`
	Website         string   `yaml:"website"`
	Latitude        *float64 `yaml:"latitude"`
	Longitude       *float64 `yaml:"longitude"`
	Timings         string   `yaml:"timings"`
	Services        []string `yaml:"services"`
	Rating          float64  `yaml:"rating"`
	TotalReviews    int      `yaml:"total_reviews"`
	ImageURL        string   `yaml:"image_url"`
	HasHomeDelivery bool     `yaml:"has_home_delivery"`
	Inactive        bool     `yaml:"inactive"`
}

type facilitiesFile struct {
	Facilities []facilitySeed `yaml:"facilities"`
}

// SeedFacilities loads a facilities YAML document and inserts every entry.
// Entries are validated before anything is written.
func SeedFacilities(ctx context.Context, repo domain.FacilityRepository, r io.Reader) (int, error) {
	var file facilitiesFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return 0, fmt.Errorf("parse facilities: %w", err)
	}

	facilities := make([]*domain.Facility, 0, len(file.Facilities))
	for i, s := range file.Facilities {
		t := domain.NormalizeFacilityType(s.Type)
		if !domain.IsOneOf(t, domain.FacilityTypes) {
			return 0, fmt.Errorf("facility %d (%s): unknown type %q", i, s.Name, s.Type)
		}
		if strings.TrimSpace(s.Name) == "" {
			return 0, fmt.Errorf("facility %d: name is required", i)
		}
		if (s.Latitude == nil) != (s.Longitude == nil) {
			return 0, fmt.Errorf("facility %d (%s): latitude and longitude go together", i, s.Name)
		}
		facilities = append(facilities, &domain.Facility{
			Type:            t,
			Name:            s.Name,
			Address:         s.Address,
			Phone:           s.Phone,
			Email:           s.Email,
			Website:         s.Website,
			Latitude:        s.Latitude,
			Longitude:       s.Longitude,
			Timings:         s.Timings,
			Services:        strings.Join(s.Services, ", "),
			Rating:          s.Rating,
			TotalReviews:    s.TotalReviews,
			ImageURL:        s.ImageURL,
			HasHomeDelivery: s.HasHomeDelivery,
			IsActive:        !s.Inactive,
		})
	}

	for i, f := range facilities {
		if err := repo.Create(ctx, f); err != nil {
			return i, fmt.Errorf("create facility %s: %w", f.Name, err)
		}
	}
	return len(facilities), nil
}
