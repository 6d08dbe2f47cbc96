package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/http/middleware"
)

// DoctorHandlers serves a doctor's own verification case
type DoctorHandlers struct {
	svc    domain.VerificationService
	logger zerolog.Logger
}

// NewDoctorHandlers creates doctor verification handlers
func NewDoctorHandlers(svc domain.VerificationService, logger zerolog.Logger) *DoctorHandlers {
	return &DoctorHandlers{svc: svc, logger: logger}
}

var errBadProfile = domain.NewValidationError("", "Invalid profile data")

// Submit accepts the multipart verification packet
func (h *DoctorHandlers) Submit(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "Invalid form data")
		return
	}

	in, closers, err := submissionFromForm(form)
	defer func() {
		for _, f := range closers {
			_ = f.Close()
		}
	}()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	vc, err := h.svc.Submit(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Verification documents submitted successfully",
		"profileId": vc.ID,
		"status":    vc.Status,
	})
}

func submissionFromForm(form *multipart.Form) (domain.SubmitCaseInput, []multipart.File, error) {
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	var in domain.SubmitCaseInput
	if raw := value("userId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, nil, errBadProfile
		}
		in.UserID = uint(id)
	}

	in.Profile = domain.DoctorProfile{
		Specialization:     value("specialization"),
		Qualification:      value("qualification"),
		RegistrationNumber: value("registrationNumber"),
		Bio:                value("bio"),
	}
	// Unparseable numbers count as zero.
	in.Profile.ExperienceYears, _ = strconv.Atoi(value("experienceYears"))
	in.Profile.ConsultationFee, _ = strconv.ParseFloat(value("consultationFee"), 64)

	for key, dst := range map[string]interface{}{
		"languagesSpoken": &in.Profile.LanguagesSpoken,
		"availableDays":   &in.Profile.AvailableDays,
		"availableHours":  &in.Profile.AvailableHours,
	} {
		if raw := value(key); raw != "" {
			if err := json.Unmarshal([]byte(raw), dst); err != nil {
				return in, nil, errBadProfile
			}
		}
	}

	var opened []multipart.File
	file := func(key string) (*domain.Upload, error) {
		headers := form.File[key]
		if len(headers) == 0 {
			return nil, nil
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		opened = append(opened, f)
		return &domain.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}, nil
	}

	var err error
	if in.GovtID, err = file("govtId"); err != nil {
		return in, opened, err
	}
	if in.DegreeCertificate, err = file("degreeCertificate"); err != nil {
		return in, opened, err
	}
	if in.RegistrationCertificate, err = file("registrationCertificate"); err != nil {
		return in, opened, err
	}
	if in.ExperienceCertificate, err = file("experienceCertificate"); err != nil {
		return in, opened, err
	}
	return in, opened, nil
}

// GetOwn returns the caller's case
func (h *DoctorHandlers) GetOwn(c *gin.Context) {
	own, err := h.svc.GetOwn(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	vc := own.Case
	profile := caseJSON(vc)
	profile["firstName"] = own.Owner.FirstName
	profile["lastName"] = own.Owner.LastName
	profile["email"] = own.Owner.Email
	profile["phone"] = own.Owner.Phone
	profile["bio"] = vc.Profile.Bio
	profile["languagesSpoken"] = nonNil(vc.Profile.LanguagesSpoken)
	profile["availableDays"] = nonNil(vc.Profile.AvailableDays)
	profile["availableHours"] = vc.Profile.AvailableHours
	profile["updatedAt"] = vc.UpdatedAt
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// caseJSON renders the fields shared by the doctor and admin views.
func caseJSON(vc *domain.VerificationCase) gin.H {
	return gin.H{
		"id":                 vc.ID,
		"userId":             vc.UserID,
		"specialization":     vc.Profile.Specialization,
		"qualification":      vc.Profile.Qualification,
		"experienceYears":    vc.Profile.ExperienceYears,
		"registrationNumber": vc.Profile.RegistrationNumber,
		"consultationFee":    vc.Profile.ConsultationFee,
		"verificationStatus": vc.Status,
		"verifiedAt":         timeOrNil(vc.VerifiedAt),
		"rejectionReason":    nilIfEmpty(vc.RejectionReason),
		"createdAt":          vc.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
