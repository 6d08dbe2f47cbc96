package domain

import (
	"context"
	"io"
	"time"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*User, error)
	Update(ctx context.Context, user *User) error
}

// OTPRepository stores one-time codes keyed by (phone, purpose)
type OTPRepository interface {
	// Replace deletes every record for the record's (phone, purpose) pair and stores record.
	Replace(ctx context.Context, record *OTPRecord) error
	// FindActive returns the latest unverified record for the pair or ErrOTPNotFound.
	FindActive(ctx context.Context, phone, purpose string) (*OTPRecord, error)
	IncrementAttempts(ctx context.Context, record *OTPRecord) (int, error)
	MarkVerified(ctx context.Context, record *OTPRecord) error
}

// VerificationRepository persists doctor verification cases
type VerificationRepository interface {
	Create(ctx context.Context, c *VerificationCase) error
	FindByID(ctx context.Context, id uint) (*VerificationCase, error)
	FindByUserID(ctx context.Context, userID uint) (*VerificationCase, error)
	// Approve marks a pending case approved and flags its owner verified in one transaction.
	Approve(ctx context.Context, id, adminID uint, at time.Time) (*VerificationCase, error)
	Reject(ctx context.Context, id, adminID uint, reason string, at time.Time) (*VerificationCase, error)
	List(ctx context.Context, filter CaseFilter) ([]*VerificationCase, int64, error)
}

// FacilityRepository reads facilities for proximity search
type FacilityRepository interface {
	// FindCandidates returns up to limit active facilities of type that have coordinates.
	FindCandidates(ctx context.Context, facilityType string, limit int) ([]*Facility, error)
	Create(ctx context.Context, f *Facility) error
}

// AuthService defines authentication business logic
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	Logout(ctx context.Context, actor *Actor) error
	ResolveSession(ctx context.Context, token string) (*User, error)
	GetProfile(ctx context.Context, actor *Actor) (*User, error)
}

// OTPService defines OTP operations
type OTPService interface {
	Send(ctx context.Context, phone, purpose string) (*OTPRecord, error)
	Verify(ctx context.Context, phone, code, purpose string) error
}

// Upload is a document received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SubmitCaseInput is a doctor's verification submission.
type SubmitCaseInput struct {
	UserID                  uint
	Profile                 DoctorProfile
	GovtID                  *Upload
	DegreeCertificate       *Upload
	RegistrationCertificate *Upload
	ExperienceCertificate   *Upload
}

// ListCasesInput selects a page of cases by status.
type ListCasesInput struct {
	Status   string
	Page     int
	PageSize int
}

// VerificationService defines the doctor verification workflow
type VerificationService interface {
	Submit(ctx context.Context, actor *Actor, in SubmitCaseInput) (*VerificationCase, error)
	Approve(ctx context.Context, actor *Actor, caseID uint) (*VerificationCase, error)
	Reject(ctx context.Context, actor *Actor, caseID uint, reason string) (*VerificationCase, error)
	Decide(ctx context.Context, actor *Actor, caseID uint, action, reason string) (*VerificationCase, error)
	List(ctx context.Context, actor *Actor, in ListCasesInput) (*CasePage, error)
	GetOwn(ctx context.Context, actor *Actor) (*CaseWithOwner, error)
}

// NearbyQuery describes a proximity search. A nil Origin means no coordinates were supplied.
type NearbyQuery struct {
	Origin   *GeoPoint
	Type     string
	RadiusKm float64
	Limit    int
}

// NearbyResult is the ranked outcome of a proximity search.
type NearbyResult struct {
	Results  []*NearbyFacility
	Origin   GeoPoint
	RadiusKm float64
}

// LocationService defines proximity search
type LocationService interface {
	Nearby(ctx context.Context, q NearbyQuery) (*NearbyResult, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines session credential operations
type TokenService interface {
	Generate(user *User) (string, time.Time, error)
	Validate(token string) (*TokenClaims, error)
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// BlobStore keeps uploaded documents and returns an opaque reference to them.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, ref string) error
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}
