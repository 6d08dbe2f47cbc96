package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/http/middleware"
)

// AdminHandlers serves the admin review queue
type AdminHandlers struct {
	svc    domain.VerificationService
	logger zerolog.Logger
}

// NewAdminHandlers creates admin review handlers
func NewAdminHandlers(svc domain.VerificationService, logger zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{svc: svc, logger: logger}
}

// DecisionRequest is the body of an admin decision
type DecisionRequest struct {
	Action          string `json:"action"`
	RejectionReason string `json:"rejectionReason"`
}

// ListDoctors returns a page of verification cases
func (h *AdminHandlers) ListDoctors(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.svc.List(c.Request.Context(), middleware.ActorFrom(c), domain.ListCasesInput{
		Status:   c.DefaultQuery("status", domain.CaseStatusAll),
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	doctors := make([]gin.H, 0, len(result.Items))
	for _, item := range result.Items {
		d := caseJSON(item.Case)
		d["firstName"] = item.Owner.FirstName
		d["lastName"] = item.Owner.LastName
		d["email"] = item.Owner.Email
		d["phone"] = item.Owner.Phone
		d["userCreatedAt"] = item.Owner.UserCreatedAt
		d["documents"] = gin.H{
			"govtId":                  item.Case.Documents.GovtID,
			"degreeCertificate":       item.Case.Documents.DegreeCertificate,
			"registrationCertificate": item.Case.Documents.RegistrationCertificate,
			"experienceCertificate":   nilIfEmpty(item.Case.Documents.ExperienceCertificate),
		}
		doctors = append(doctors, d)
	}

	c.JSON(http.StatusOK, gin.H{
		"doctors": doctors,
		"pagination": gin.H{
			"page":       result.Page,
			"limit":      result.PageSize,
			"total":      result.Total,
			"totalPages": result.TotalPages,
		},
	})
}

// DecideDoctor approves or rejects a case
func (h *AdminHandlers) DecideDoctor(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Doctor profile not found"})
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	vc, err := h.svc.Decide(c.Request.Context(), middleware.ActorFrom(c), uint(id), req.Action, req.RejectionReason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Doctor " + vc.Status + " successfully",
		"status":  vc.Status,
	})
}
