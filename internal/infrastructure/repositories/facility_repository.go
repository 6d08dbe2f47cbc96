package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/you/nirogsvc/domain"
	"gorm.io/gorm"
)

// DBFacility is a hospital, lab or pharmacy row.
type DBFacility struct {
	ID              uint     `gorm:"primaryKey"`
	Type            string   `gorm:"index:idx_facilities_type_active;size:20;not null"`
	Name            string   `gorm:"size:255;not null"`
	Address         string   `gorm:"type:text"`
	Phone           string   `gorm:"size:32"`
	Email           string   `gorm:"size:255"`
	Website         string   `gorm:"size:500"`
	Latitude        *float64 `gorm:"type:decimal(10,8)"`
	Longitude       *float64 `gorm:"type:decimal(11,8)"`
	Timings         string   `gorm:"type:text"`
	Services        string   `gorm:"type:text"`
	Rating          float64  `gorm:"default:0"`
	TotalReviews    int      `gorm:"default:0"`
	ImageURL        string   `gorm:"size:500"`
	HasHomeDelivery bool
	IsActive        bool `gorm:"index:idx_facilities_type_active"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (DBFacility) TableName() string {
	return "facilities"
}

// FacilityRepositoryImpl implements domain.FacilityRepository using GORM
type FacilityRepositoryImpl struct {
	db *gorm.DB
}

// NewFacilityRepository creates a new facility repository
func NewFacilityRepository(db *gorm.DB) domain.FacilityRepository {
	return &FacilityRepositoryImpl{db: db}
}

// FindCandidates implements domain.FacilityRepository. Rows come back in id order.
func (r *FacilityRepositoryImpl) FindCandidates(ctx context.Context, facilityType string, limit int) ([]*domain.Facility, error) {
	var rows []DBFacility
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ?", facilityType, true).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find %s candidates: %w", facilityType, err)
	}

	out := make([]*domain.Facility, 0, len(rows))
	for i := range rows {
		out = append(out, facilityToDomain(&rows[i]))
	}
	return out, nil
}

// Create implements domain.FacilityRepository
func (r *FacilityRepositoryImpl) Create(ctx context.Context, f *domain.Facility) error {
	row := facilityToDB(f)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create facility: %w", err)
	}
	f.ID = row.ID
	f.CreatedAt = row.CreatedAt
	f.UpdatedAt = row.UpdatedAt
	return nil
}

func facilityToDB(f *domain.Facility) *DBFacility {
	return &DBFacility{
		ID:              f.ID,
		Type:            f.Type,
		Name:            f.Name,
		Address:         f.Address,
		Phone:           f.Phone,
		Email:           f.Email,
		Website:         f.Website,
		Latitude:        f.Latitude,
		Longitude:       f.Longitude,
		Timings:         f.Timings,
		Services:        f.Services,
		Rating:          f.Rating,
		TotalReviews:    f.TotalReviews,
		ImageURL:        f.ImageURL,
		HasHomeDelivery: f.HasHomeDelivery,
		IsActive:        f.IsActive,
		CreatedAt:       f.CreatedAt,
	}
}

func facilityToDomain(row *DBFacility) *domain.Facility {
	return &domain.Facility{
		ID:              row.ID,
		Type:            row.Type,
		Name:            row.Name,
		Address:         row.Address,
		Phone:           row.Phone,
		Email:           row.Email,
		Website:         row.Website,
		Latitude:        row.Latitude,
		Longitude:       row.Longitude,
		Timings:         row.Timings,
		Services:        row.Services,
		Rating:          row.Rating,
		TotalReviews:    row.TotalReviews,
		ImageURL:        row.ImageURL,
		HasHomeDelivery: row.HasHomeDelivery,
		IsActive:        row.IsActive,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
