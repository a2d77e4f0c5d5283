package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homehunt/homehunt-api/internal/application"
	"github.com/homehunt/homehunt-api/pkg/helpers"
	"github.com/homehunt/homehunt-api/pkg/response"
	"github.com/homehunt/homehunt-api/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type sendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	OTP      string `json:"otp" binding:"required,otp"`
	Role     string `json:"role" binding:"required,role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SendOTP POST /api/auth/send-otp
// Registration phase 1. The response is the same generic 200 whether or not
// the email already owns an account.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestOTP(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, application.ErrDeliveryFailure) {
			response.Error[any](c, http.StatusInternalServerError, "failed to send OTP", nil)
			return
		}
		h.Logger.WithError(err).Error("request otp failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to send OTP", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "OTP sent to email", nil)
}

// Register POST /api/auth/register
// Registration phase 2: verify OTP and set the password.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		OTP:      req.OTP,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidRole):
			response.Error[any](c, http.StatusBadRequest, "invalid role", nil)
		case errors.Is(err, application.ErrChallengeNotFound):
			response.Error[any](c, http.StatusBadRequest, "OTP not requested", nil)
		case errors.Is(err, application.ErrChallengeExpired):
			response.Error[any](c, http.StatusBadRequest, "OTP expired", nil)
		case errors.Is(err, application.ErrInvalidChallenge):
			response.Error[any](c, http.StatusBadRequest, "invalid OTP", nil)
		case errors.Is(err, application.ErrAlreadyRegistered):
			response.Error[any](c, http.StatusConflict, "email already registered", nil)
		default:
			h.Logger.WithError(err).Error("register failed")
			response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"id":    u.ID,
		"email": u.Email,
		"role":  u.Role,
	}, "registration successful, please login", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, exp, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrAccountBlocked):
			response.Error[any](c, http.StatusForbidden, "user blocked", nil)
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		}
		return
	}

	h.Cookies.SetSession(c, token, exp)
	response.Success(c, http.StatusOK, gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}, "login successful", map[string]any{"session_expires_at": exp})
}

// Logout POST /api/auth/logout
// Clears the client-held credential; a previously captured token stays valid
// until its natural expiry (no server-side revocation).
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.ClearSession(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out successfully", nil)
}
