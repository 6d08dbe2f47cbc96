package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/config"
)

// CasbinMiddleware defines the interface for Casbin authorization middleware
type CasbinMiddleware interface {
	Enforce() gin.HandlerFunc
}

// CasbinMW wraps the casbin enforcer and ownership rules for middleware
type CasbinMW struct {
	enforcer    domain.CasbinEnforcer
	rules       []config.OwnershipRule
	auditLogger domain.AuditLogger
	logger      zerolog.Logger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(enforcer domain.CasbinEnforcer, rules []config.OwnershipRule, auditLogger domain.AuditLogger, logger zerolog.Logger) *CasbinMW {
	return &CasbinMW{enforcer: enforcer, rules: rules, auditLogger: auditLogger, logger: logger}
}

var errNotOwner = errors.New("request user does not match session user")

// Enforce authorizes "role_<role>" for the request path and method, then
// applies the ownership rules of the matched route. Must run after WithSession.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenUserID := c.GetString(CtxUserID)
		role := c.GetString(CtxUserRole)
		if tokenUserID == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		path := c.Request.URL.Path
		method := c.Request.Method

		allowed, err := mw.enforcer.Enforce("role_"+role, path, method)
		if err != nil {
			mw.logger.Error().Err(err).Str("path", path).Msg("authorization check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !allowed {
			mw.deny(c, role, nil)
			return
		}

		for _, rule := range mw.rules {
			if rule.Path != c.FullPath() || rule.Method != method {
				continue
			}
			requestUserID := extractUserID(c, rule.Source, rule.ParamName)
			if requestUserID == "" && rule.Optional {
				continue
			}
			if requestUserID != tokenUserID {
				mw.deny(c, role, errNotOwner)
				return
			}
		}

		c.Next()
	}
}

func (mw *CasbinMW) deny(c *gin.Context, role string, reason error) {
	if mw.auditLogger != nil {
		event := domain.NewAuditEvent(domain.AccessDeniedEvent, 0).
			WithMetadata("role", role).
			WithMetadata("method", c.Request.Method).
			WithMetadata("path", c.Request.URL.Path).
			WithError(reason)
		if actor := ActorFrom(c); actor != nil {
			event.UserID = actor.UserID
			event.Email = actor.Email
		}
		_ = mw.auditLogger.LogEvent(c.Request.Context(), event)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}
