package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/http/middleware"
)

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// AuthHandlers handles identity and OTP HTTP requests
type AuthHandlers struct {
	authSvc   domain.AuthService
	otpSvc    domain.OTPService
	cookie    CookieOptions
	exposeOTP bool
	logger    zerolog.Logger
}

// NewAuthHandlers creates new auth handlers. exposeOTP echoes issued codes in
// responses and must be false in production.
func NewAuthHandlers(authSvc domain.AuthService, otpSvc domain.OTPService, cookie CookieOptions, exposeOTP bool, logger zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authSvc:   authSvc,
		otpSvc:    otpSvc,
		cookie:    cookie,
		exposeOTP: exposeOTP,
		logger:    logger,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest represents login request. Identifier is an email or phone number.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SendOTPRequest represents an OTP issue request
type SendOTPRequest struct {
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
}

// VerifyOTPRequest represents OTP verification request
type VerifyOTPRequest struct {
	Phone   string `json:"phone"`
	OTPCode string `json:"otpCode"`
	Purpose string `json:"purpose"`
}

func userJSON(u *domain.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"phone":      u.Phone,
		"role":       u.Role,
		"firstName":  u.FirstName,
		"lastName":   u.LastName,
		"isVerified": u.IsVerified,
	}
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.cookie.Secure, true)
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), domain.RegisterInput{
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, result.Token, int(h.cookie.MaxAge.Seconds()))
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    userJSON(result.User),
	})
}

// Login handles user login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, result.Token, int(h.cookie.MaxAge.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userJSON(result.User),
	})
}

// Logout clears the session cookie
func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), middleware.ActorFrom(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me returns the caller's account
func (h *AuthHandlers) Me(c *gin.Context) {
	user, err := h.authSvc.GetProfile(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userJSON(user)})
}

// SendOTP issues a one-time code to a phone number
func (h *AuthHandlers) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	record, err := h.otpSvc.Send(c.Request.Context(), req.Phone, req.Purpose)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := gin.H{"message": "OTP sent successfully"}
	if h.exposeOTP {
		resp["otp"] = record.Code
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyOTP checks a one-time code
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if err := h.otpSvc.Verify(c.Request.Context(), req.Phone, req.OTPCode, req.Purpose); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully"})
}
