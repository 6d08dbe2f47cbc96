package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
)

// PolicyHandlers manages Casbin rules at runtime
type PolicyHandlers struct {
	svc    domain.PolicyService
	logger zerolog.Logger
}

// NewPolicyHandlers creates policy management handlers
func NewPolicyHandlers(svc domain.PolicyService, logger zerolog.Logger) *PolicyHandlers {
	return &PolicyHandlers{svc: svc, logger: logger}
}

// PolicyRequest names a role (with or without the role_ prefix), a path
// pattern and a method pattern.
type PolicyRequest struct {
	Role     string `json:"role"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

func (h *PolicyHandlers) List(c *gin.Context) {
	policies := h.svc.GetPolicies()
	out := make([]PolicyRequest, 0, len(policies))
	for _, p := range policies {
		if len(p) >= 3 {
			out = append(out, PolicyRequest{Role: p[0], Resource: p[1], Action: p[2]})
		}
	}
	c.JSON(http.StatusOK, gin.H{"policies": out})
}

func (h *PolicyHandlers) Add(c *gin.Context) {
	var r PolicyRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := h.svc.AddPolicy(r.Role, r.Resource, r.Action); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PolicyHandlers) Remove(c *gin.Context) {
	var r PolicyRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := h.svc.RemovePolicy(r.Role, r.Resource, r.Action); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
