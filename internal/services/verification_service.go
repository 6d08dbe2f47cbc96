package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/infrastructure/storage"
)

// Validation messages returned by the verification workflow.
const (
	MsgRequiredFieldsMissing    = "Required fields are missing"
	MsgRequiredDocumentsMissing = "Required documents are missing"
	MsgRejectionReasonRequired  = "Rejection reason is required"
	MsgInvalidAction            = "Invalid action"
	MsgInvalidStatus            = "Invalid status"
)

// Decision actions accepted by Decide.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

const (
	defaultCasePage     = 1
	defaultCasePageSize = 10
	maxCasePageSize     = 100
	maxCasePage         = 1_000_000
)

var caseStatuses = []string{
	domain.CaseStatusPending,
	domain.CaseStatusApproved,
	domain.CaseStatusRejected,
	domain.CaseStatusAll,
}

// VerificationServiceImpl implements domain.VerificationService
type VerificationServiceImpl struct {
	cases           domain.VerificationRepository
	users           domain.UserRepository
	blobs           domain.BlobStore
	notificationSvc domain.NotificationService
	auditLogger     domain.AuditLogger
	clock           domain.Clock
	logger          zerolog.Logger
}

// NewVerificationService creates the doctor verification workflow
func NewVerificationService(
	cases domain.VerificationRepository,
	users domain.UserRepository,
	blobs domain.BlobStore,
	notificationSvc domain.NotificationService,
	auditLogger domain.AuditLogger,
	clock domain.Clock,
	logger zerolog.Logger,
) domain.VerificationService {
	return &VerificationServiceImpl{
		cases:           cases,
		users:           users,
		blobs:           blobs,
		notificationSvc: notificationSvc,
		auditLogger:     auditLogger,
		clock:           clock,
		logger:          logger,
	}
}

// Submit implements domain.VerificationService
func (s *VerificationServiceImpl) Submit(ctx context.Context, actor *domain.Actor, in domain.SubmitCaseInput) (*domain.VerificationCase, error) {
	if !actor.HasRole(domain.RoleDoctor) {
		return nil, domain.ErrUnauthorized
	}
	if in.UserID == 0 {
		in.UserID = actor.UserID
	}
	if in.UserID != actor.UserID {
		return nil, domain.ErrUnauthorized
	}

	p := &in.Profile
	p.Specialization = strings.TrimSpace(p.Specialization)
	p.Qualification = strings.TrimSpace(p.Qualification)
	p.RegistrationNumber = strings.TrimSpace(p.RegistrationNumber)
	if p.Specialization == "" || p.Qualification == "" || p.RegistrationNumber == "" {
		return nil, domain.NewValidationError("", MsgRequiredFieldsMissing)
	}
	if missing(in.GovtID) || missing(in.DegreeCertificate) || missing(in.RegistrationCertificate) {
		return nil, domain.NewValidationError("", MsgRequiredDocumentsMissing)
	}

	if _, err := s.cases.FindByUserID(ctx, in.UserID); err == nil {
		return nil, domain.ErrCaseExists
	} else if !errors.Is(err, domain.ErrCaseNotFound) {
		return nil, fmt.Errorf("failed to check existing case: %w", err)
	}

	now := s.clock.Now()
	var stored []string
	upload := func(kind string, u *domain.Upload) (string, error) {
		if missing(u) {
			return "", nil
		}
		name := storage.DocumentName(in.UserID, kind, u.Filename, now)
		ref, err := s.blobs.Put(ctx, name, u.ContentType, u.Body, u.Size)
		if err != nil {
			return "", fmt.Errorf("failed to store %s: %w", kind, err)
		}
		stored = append(stored, ref)
		return ref, nil
	}

	c := &domain.VerificationCase{
		UserID:    in.UserID,
		Profile:   in.Profile,
		Status:    domain.CaseStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := func() error {
		var err error
		if c.Documents.GovtID, err = upload("govt_id", in.GovtID); err != nil {
			return err
		}
		if c.Documents.DegreeCertificate, err = upload("degree", in.DegreeCertificate); err != nil {
			return err
		}
		if c.Documents.RegistrationCertificate, err = upload("registration", in.RegistrationCertificate); err != nil {
			return err
		}
		if c.Documents.ExperienceCertificate, err = upload("experience", in.ExperienceCertificate); err != nil {
			return err
		}
		return s.cases.Create(ctx, c)
	}()
	if err != nil {
		s.discard(ctx, stored)
		return nil, err
	}

	s.logEvent(ctx, domain.NewAuditEvent(domain.CaseSubmittedEvent, actor.UserID).
		WithEmail(actor.Email).
		WithMetadata("case_id", c.ID))
	return c, nil
}

func missing(u *domain.Upload) bool {
	return u == nil || u.Body == nil || u.Size <= 0
}

// discard removes blobs written for a submission that was not persisted.
func (s *VerificationServiceImpl) discard(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := s.blobs.Delete(context.WithoutCancel(ctx), ref); err != nil && !errors.Is(err, domain.ErrBlobNotFound) {
			s.logger.Error().Err(err).Str("ref", ref).Msg("failed to remove orphaned document")
		}
	}
}

// Approve implements domain.VerificationService
func (s *VerificationServiceImpl) Approve(ctx context.Context, actor *domain.Actor, caseID uint) (*domain.VerificationCase, error) {
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrUnauthorized
	}
	c, err := s.cases.Approve(ctx, caseID, actor.UserID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, domain.NewAuditEvent(domain.CaseApprovedEvent, actor.UserID).
		WithMetadata("case_id", c.ID).
		WithMetadata("doctor_id", c.UserID))
	s.notifyDecision(ctx, c, "Your Nirog doctor verification was approved",
		"<p>Congratulations! Your credentials have been verified. You can now consult patients on Nirog.</p>")
	return c, nil
}

// Reject implements domain.VerificationService
func (s *VerificationServiceImpl) Reject(ctx context.Context, actor *domain.Actor, caseID uint, reason string) (*domain.VerificationCase, error) {
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrUnauthorized
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("rejectionReason", MsgRejectionReasonRequired)
	}
	c, err := s.cases.Reject(ctx, caseID, actor.UserID, reason, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, domain.NewAuditEvent(domain.CaseRejectedEvent, actor.UserID).
		WithMetadata("case_id", c.ID).
		WithMetadata("doctor_id", c.UserID).
		WithMetadata("reason", reason))
	s.notifyDecision(ctx, c, "Your Nirog doctor verification was rejected",
		fmt.Sprintf("<p>Your verification request was not approved.</p><p>Reason: %s</p>", html.EscapeString(reason)))
	return c, nil
}

// Decide implements domain.VerificationService
func (s *VerificationServiceImpl) Decide(ctx context.Context, actor *domain.Actor, caseID uint, action, reason string) (*domain.VerificationCase, error) {
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrUnauthorized
	}
	switch action {
	case ActionApprove:
		return s.Approve(ctx, actor, caseID)
	case ActionReject:
		return s.Reject(ctx, actor, caseID, reason)
	}
	return nil, domain.NewValidationError("action", MsgInvalidAction)
}

// notifyDecision emails the case owner. Failures are logged only.
func (s *VerificationServiceImpl) notifyDecision(ctx context.Context, c *domain.VerificationCase, subject, body string) {
	if s.notificationSvc == nil {
		return
	}
	owner, err := s.users.FindByID(ctx, c.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("case_id", c.ID).Msg("decision email skipped")
		return
	}
	if err := s.notificationSvc.SendEmail(owner.Email, subject, body); err != nil {
		s.logger.Warn().Err(err).Uint("case_id", c.ID).Msg("decision email failed")
	}
}

// List implements domain.VerificationService
func (s *VerificationServiceImpl) List(ctx context.Context, actor *domain.Actor, in domain.ListCasesInput) (*domain.CasePage, error) {
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrUnauthorized
	}
	if in.Status == "" {
		in.Status = domain.CaseStatusAll
	}
	if !domain.IsOneOf(in.Status, caseStatuses) {
		return nil, domain.NewValidationError("status", MsgInvalidStatus)
	}
	if in.Page < 1 {
		in.Page = defaultCasePage
	}
	if in.PageSize < 1 {
		in.PageSize = defaultCasePageSize
	}
	if in.PageSize > maxCasePageSize {
		in.PageSize = maxCasePageSize
	}
	// Keeps (page-1)*size far from overflowing into a negative offset.
	if in.Page > maxCasePage {
		in.Page = maxCasePage
	}

	cases, total, err := s.cases.List(ctx, domain.CaseFilter{
		Status: in.Status,
		Offset: (in.Page - 1) * in.PageSize,
		Limit:  in.PageSize,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(cases))
	for _, c := range cases {
		ids = append(ids, c.UserID)
	}
	owners, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load case owners: %w", err)
	}

	items := make([]*domain.CaseWithOwner, 0, len(cases))
	for _, c := range cases {
		items = append(items, &domain.CaseWithOwner{Case: c, Owner: ownerOf(owners[c.UserID])})
	}

	return &domain.CasePage{
		Items:      items,
		Page:       in.Page,
		PageSize:   in.PageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(in.PageSize))),
	}, nil
}

// GetOwn implements domain.VerificationService
func (s *VerificationServiceImpl) GetOwn(ctx context.Context, actor *domain.Actor) (*domain.CaseWithOwner, error) {
	if actor == nil || actor.UserID == 0 {
		return nil, domain.ErrUnauthorized
	}
	c, err := s.cases.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return &domain.CaseWithOwner{Case: c, Owner: ownerOf(owner)}, nil
}

func ownerOf(u *domain.User) domain.CaseOwner {
	if u == nil {
		return domain.CaseOwner{}
	}
	return domain.CaseOwner{
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Phone:         u.Phone,
		UserCreatedAt: u.CreatedAt,
	}
}

func (s *VerificationServiceImpl) logEvent(ctx context.Context, event *domain.AuditEvent) {
	if s.auditLogger == nil {
		return
	}
	_ = s.auditLogger.LogEvent(ctx, event.WithClientContext(domain.ClientContextFrom(ctx)))
}
