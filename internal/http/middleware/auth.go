package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
)

// Context keys set by the session middleware.
const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
	CtxActor    = "actor"
)

// SessionCookie is the name of the cookie carrying the session credential.
const SessionCookie = "auth-token"

// AuthMW resolves the session credential of a request into an actor
type AuthMW struct {
	authSvc domain.AuthService
	logger  zerolog.Logger
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(authSvc domain.AuthService, logger zerolog.Logger) *AuthMW {
	return &AuthMW{authSvc: authSvc, logger: logger}
}

// TokenFrom returns the credential from the session cookie or, failing that,
// a Bearer Authorization header.
func TokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// WithSession rejects requests without a live session with 401.
func (mw *AuthMW) WithSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := mw.authSvc.ResolveSession(c.Request.Context(), TokenFrom(c))
		if err != nil {
			mw.logger.Error().Err(err).Msg("session lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		// user_id is a string so ownership checks compare request fields directly
		c.Set(CtxUserID, strconv.FormatUint(uint64(user.ID), 10))
		c.Set(CtxUserRole, user.Role)
		c.Set(CtxActor, domain.ActorFromUser(user))
		c.Next()
	}
}

// ActorFrom returns the actor stored by WithSession, or nil.
func ActorFrom(c *gin.Context) *domain.Actor {
	v, ok := c.Get(CtxActor)
	if !ok {
		return nil
	}
	actor, _ := v.(*domain.Actor)
	return actor
}
