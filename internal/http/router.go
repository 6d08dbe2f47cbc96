package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/internal/http/handlers"
	"github.com/you/nirogsvc/internal/http/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandlers
	Doctor   *handlers.DoctorHandlers
	Admin    *handlers.AdminHandlers
	Location *handlers.LocationHandlers
	Policy   *handlers.PolicyHandlers
}

// RouterOptions carries the request limits.
type RouterOptions struct {
	MaxBodyBytes int64
	// HealthCheck reports dependency health; nil means always healthy.
	HealthCheck func() error
}

func BuildRouter(h Handlers, authmw *middleware.AuthMW, cb middleware.CasbinMiddleware, logger zerolog.Logger, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestContext(), middleware.Logger(logger), middleware.Recovery(logger))
	// multipart files beyond this spill to temp files
	r.MaxMultipartMemory = 8 << 20

	r.GET("/health", func(c *gin.Context) {
		if opts.HealthCheck != nil {
			if err := opts.HealthCheck(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	session, enforce := authmw.WithSession(), cb.Enforce()

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/send-otp", h.Auth.SendOTP)
	auth.POST("/verify-otp", h.Auth.VerifyOTP)
	auth.POST("/logout", session, enforce, h.Auth.Logout)
	auth.GET("/me", session, enforce, h.Auth.Me)

	doctors := api.Group("/doctors")
	doctors.POST("/verify", middleware.BodyLimit(opts.MaxBodyBytes), session, enforce, h.Doctor.Submit)
	doctors.GET("/verify", session, enforce, h.Doctor.GetOwn)

	adm := api.Group("/admin").Use(session, enforce)
	adm.GET("/doctors", h.Admin.ListDoctors)
	adm.POST("/doctors/:id/verify", h.Admin.DecideDoctor)
	adm.GET("/policies", h.Policy.List)
	adm.POST("/policies", h.Policy.Add)
	adm.DELETE("/policies", h.Policy.Remove)

	api.GET("/location/nearby", h.Location.Nearby)

	return r
}
