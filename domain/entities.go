package domain

import "time"

// Roles a user account can hold.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// SelfRegisterRoles are the roles accepted on public registration.
var SelfRegisterRoles = []string{RolePatient, RoleDoctor, RoleStudent}

// User represents a platform account
type User struct {
	ID           uint
	Email        string
	Phone        string
	PasswordHash string `gorm:"column:password"`
	Role         string
	FirstName    string
	LastName     string
	IsVerified   bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uint
	Email  string
	Role   string
}

// HasRole reports whether the actor holds role.
func (a *Actor) HasRole(role string) bool {
	return a != nil && a.UserID != 0 && a.Role == role
}

// ActorFromUser builds the actor for a resolved user.
func ActorFromUser(u *User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// RegisterInput carries the fields of a registration request
type RegisterInput struct {
	Email     string
	Phone     string
	Password  string
	Role      string
	FirstName string
	LastName  string
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// TokenClaims represents the claims carried by a session credential
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// OTP purposes.
const (
	OTPPurposeRegistration  = "registration"
	OTPPurposeLogin         = "login"
	OTPPurposePasswordReset = "password_reset"
)

// OTPPurposes lists every accepted OTP purpose.
var OTPPurposes = []string{OTPPurposeRegistration, OTPPurposeLogin, OTPPurposePasswordReset}

// OTPRecord is a one-time code issued for a (phone, purpose) pair
type OTPRecord struct {
	ID         string    `json:"id"`
	Phone      string    `json:"phone"`
	Code       string    `json:"code"`
	Purpose    string    `json:"purpose"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsVerified bool      `json:"is_verified"`
	Attempts   int       `json:"attempts"`
	CreatedAt  time.Time `json:"created_at"`
}

// Expired reports whether the record is past its expiry at now.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Verification case statuses.
const (
	CaseStatusPending  = "pending"
	CaseStatusApproved = "approved"
	CaseStatusRejected = "rejected"
	CaseStatusAll      = "all"
)

// Availability is a daily consultation window, e.g. 09:00-17:00.
type Availability struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CaseDocuments holds blob store references for the uploaded credentials.
type CaseDocuments struct {
	GovtID                  string
	DegreeCertificate       string
	RegistrationCertificate string
	ExperienceCertificate   string
}

// DoctorProfile is the professional information a doctor submits for review.
type DoctorProfile struct {
	Specialization     string
	Qualification      string
	ExperienceYears    int
	RegistrationNumber string
	ConsultationFee    float64
	Bio                string
	LanguagesSpoken    []string
	AvailableDays      []string
	AvailableHours     Availability
}

// VerificationCase is a doctor's credential packet awaiting or past admin review.
type VerificationCase struct {
	ID              uint
	UserID          uint
	Profile         DoctorProfile
	Documents       CaseDocuments
	Status          string
	VerifiedAt      *time.Time
	VerifiedBy      *uint
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CaseOwner is the display data of the user who owns a case.
type CaseOwner struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	UserCreatedAt time.Time
}

// CaseWithOwner joins a case with its owner's display fields.
type CaseWithOwner struct {
	Case  *VerificationCase
	Owner CaseOwner
}

// CaseFilter selects a page of cases.
type CaseFilter struct {
	Status string
	Offset int
	Limit  int
}

// CasePage is one page of the admin case listing.
type CasePage struct {
	Items      []*CaseWithOwner
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// Facility types.
const (
	FacilityHospital = "hospital"
	FacilityLab      = "lab"
	FacilityPharmacy = "pharmacy"
	FacilityAll      = "all"
)

// FacilityTypes lists the searchable facility types in result order.
var FacilityTypes = []string{FacilityHospital, FacilityLab, FacilityPharmacy}

// Facility is a hospital, lab or pharmacy with an optional location.
type Facility struct {
	ID              uint
	Type            string
	Name            string
	Address         string
	Phone           string
	Email           string
	Website         string
	Latitude        *float64
	Longitude       *float64
	Timings         string
	Services        string
	Rating          float64
	TotalReviews    int
	ImageURL        string
	HasHomeDelivery bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GeoPoint is a WGS84 coordinate in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NearbyFacility is a facility annotated with its distance from the search origin.
type NearbyFacility struct {
	Facility   *Facility
	DistanceKm float64
}
