package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/you/nirogsvc/domain"
	"gorm.io/gorm"
)

// DBDoctorProfile is the persisted form of a verification case.
type DBDoctorProfile struct {
	ID                   uint                `gorm:"primaryKey"`
	UserID               uint                `gorm:"uniqueIndex;not null"`
	Specialization       string              `gorm:"size:100;not null"`
	Qualification        string              `gorm:"size:255;not null"`
	ExperienceYears      int                 `gorm:"not null;default:0"`
	RegistrationNumber   string              `gorm:"uniqueIndex;size:100;not null"`
	ConsultationFee      float64             `gorm:"not null;default:0"`
	Bio                  string              `gorm:"type:text"`
	LanguagesSpoken      []string            `gorm:"serializer:json"`
	AvailableDays        []string            `gorm:"serializer:json"`
	AvailableHours       domain.Availability `gorm:"serializer:json"`
	GovtIDURL            string              `gorm:"column:govt_id_url;size:500"`
	DegreeCertificateURL string              `gorm:"size:500"`
	RegistrationCertURL  string              `gorm:"column:registration_certificate_url;size:500"`
	ExperienceCertURL    string              `gorm:"column:experience_certificate_url;size:500"`
	Status               string              `gorm:"index;size:20;not null"`
	VerifiedAt           *time.Time
	VerifiedBy           *uint
	RejectionReason      string    `gorm:"type:text"`
	CreatedAt            time.Time `gorm:"index"`
	UpdatedAt            time.Time
}

// TableName returns the table name for GORM
func (DBDoctorProfile) TableName() string {
	return "doctor_profiles"
}

// VerificationRepositoryImpl implements domain.VerificationRepository using GORM
type VerificationRepositoryImpl struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new verification case repository
func NewVerificationRepository(db *gorm.DB) domain.VerificationRepository {
	return &VerificationRepositoryImpl{db: db}
}

// Create implements domain.VerificationRepository
func (r *VerificationRepositoryImpl) Create(ctx context.Context, c *domain.VerificationCase) error {
	row := caseToDB(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			if violatedColumn(err, "registration_number") {
				return domain.ErrRegistrationTaken
			}
			return domain.ErrCaseExists
		}
		return fmt.Errorf("create doctor profile: %w", err)
	}
	c.ID = row.ID
	c.CreatedAt = row.CreatedAt
	c.UpdatedAt = row.UpdatedAt
	return nil
}

// FindByID implements domain.VerificationRepository
func (r *VerificationRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.VerificationCase, error) {
	return r.findOne(r.db.WithContext(ctx), "id = ?", id)
}

// FindByUserID implements domain.VerificationRepository
func (r *VerificationRepositoryImpl) FindByUserID(ctx context.Context, userID uint) (*domain.VerificationCase, error) {
	return r.findOne(r.db.WithContext(ctx), "user_id = ?", userID)
}

func (r *VerificationRepositoryImpl) findOne(db *gorm.DB, query string, arg interface{}) (*domain.VerificationCase, error) {
	var row DBDoctorProfile
	if err := db.Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, err
	}
	return caseToDomain(&row), nil
}

// Approve implements domain.VerificationRepository
func (r *VerificationRepositoryImpl) Approve(ctx context.Context, id, adminID uint, at time.Time) (*domain.VerificationCase, error) {
	var out *domain.VerificationCase
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.decide(tx, id, map[string]interface{}{
			"status":           domain.CaseStatusApproved,
			"verified_at":      at,
			"verified_by":      adminID,
			"rejection_reason": "",
			"updated_at":       at,
		}); err != nil {
			return err
		}

		c, err := r.findOne(tx, "id = ?", id)
		if err != nil {
			return err
		}

		res := tx.Model(&DBUser{}).Where("id = ?", c.UserID).Updates(map[string]interface{}{
			"is_verified": true,
			"updated_at":  at,
		})
		if res.Error != nil {
			return fmt.Errorf("mark user verified: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("mark user verified: %w", domain.ErrUserNotFound)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject implements domain.VerificationRepository
func (r *VerificationRepositoryImpl) Reject(ctx context.Context, id, adminID uint, reason string, at time.Time) (*domain.VerificationCase, error) {
	var out *domain.VerificationCase
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.decide(tx, id, map[string]interface{}{
			"status":           domain.CaseStatusRejected,
			"verified_by":      adminID,
			"rejection_reason": reason,
			"updated_at":       at,
		}); err != nil {
			return err
		}
		c, err := r.findOne(tx, "id = ?", id)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decide moves a pending case to a final state. Only pending rows match, so
// concurrent decisions cannot both succeed.
func (r *VerificationRepositoryImpl) decide(tx *gorm.DB, id uint, fields map[string]interface{}) error {
	res := tx.Model(&DBDoctorProfile{}).
		Where("id = ? AND status = ?", id, domain.CaseStatusPending).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update doctor profile: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&DBDoctorProfile{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrCaseNotFound
	}
	return domain.ErrCaseDecided
}

// List implements domain.VerificationRepository. Newest cases come first.
func (r *VerificationRepositoryImpl) List(ctx context.Context, filter domain.CaseFilter) ([]*domain.VerificationCase, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&DBDoctorProfile{})
		if filter.Status != "" && filter.Status != domain.CaseStatusAll {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count doctor profiles: %w", err)
	}

	var rows []DBDoctorProfile
	err := scoped().Order("created_at DESC").Order("id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list doctor profiles: %w", err)
	}

	out := make([]*domain.VerificationCase, 0, len(rows))
	for i := range rows {
		out = append(out, caseToDomain(&rows[i]))
	}
	return out, total, nil
}

func caseToDB(c *domain.VerificationCase) *DBDoctorProfile {
	return &DBDoctorProfile{
		ID:                   c.ID,
		UserID:               c.UserID,
		Specialization:       c.Profile.Specialization,
		Qualification:        c.Profile.Qualification,
		ExperienceYears:      c.Profile.ExperienceYears,
		RegistrationNumber:   c.Profile.RegistrationNumber,
		ConsultationFee:      c.Profile.ConsultationFee,
		Bio:                  c.Profile.Bio,
		LanguagesSpoken:      c.Profile.LanguagesSpoken,
		AvailableDays:        c.Profile.AvailableDays,
		AvailableHours:       c.Profile.AvailableHours,
		GovtIDURL:            c.Documents.GovtID,
		DegreeCertificateURL: c.Documents.DegreeCertificate,
		RegistrationCertURL:  c.Documents.RegistrationCertificate,
		ExperienceCertURL:    c.Documents.ExperienceCertificate,
		Status:               c.Status,
		VerifiedAt:           c.VerifiedAt,
		VerifiedBy:           c.VerifiedBy,
		RejectionReason:      c.RejectionReason,
		CreatedAt:            c.CreatedAt,
	}
}

func caseToDomain(row *DBDoctorProfile) *domain.VerificationCase {
	return &domain.VerificationCase{
		ID:     row.ID,
		UserID: row.UserID,
		Profile: domain.DoctorProfile{
			Specialization:     row.Specialization,
			Qualification:      row.Qualification,
			ExperienceYears:    row.ExperienceYears,
			RegistrationNumber: row.RegistrationNumber,
			ConsultationFee:    row.ConsultationFee,
			Bio:                row.Bio,
			LanguagesSpoken:    row.LanguagesSpoken,
			AvailableDays:      row.AvailableDays,
			AvailableHours:     row.AvailableHours,
		},
		Documents: domain.CaseDocuments{
			GovtID:                  row.GovtIDURL,
			DegreeCertificate:       row.DegreeCertificateURL,
			RegistrationCertificate: row.RegistrationCertURL,
			ExperienceCertificate:   row.ExperienceCertURL,
		},
		Status:          row.Status,
		VerifiedAt:      row.VerifiedAt,
		VerifiedBy:      row.VerifiedBy,
		RejectionReason: row.RejectionReason,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
