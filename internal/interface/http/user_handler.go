package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homehunt/homehunt-api/internal/application"
	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/interface/middleware"
	"github.com/homehunt/homehunt-api/pkg/response"
	"github.com/homehunt/homehunt-api/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func identityView(u *entity.User, savedIDs []string) gin.H {
	if savedIDs == nil {
		savedIDs = []string{}
	}
	return gin.H{
		"id":               u.ID,
		"email":            u.Email,
		"name":             u.Name,
		"phone":            u.Phone,
		"address":          u.Address,
		"role":             u.Role,
		"is_active":        u.IsActive,
		"is_verified":      u.IsVerified,
		"saved_properties": savedIDs,
		"created_at":       u.CreatedAt,
		"updated_at":       u.UpdatedAt,
	}
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	saved, err := h.Svc.SavedProperties(c.Request.Context(), u.ID)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Warn("load saved properties failed")
		saved = []string{}
	}
	response.Success(c, http.StatusOK, identityView(u, saved), "identity", nil)
}

// UpdateProfile PUT /api/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	u, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	updated, err := h.Svc.UpdateProfile(c.Request.Context(), u.ID, application.UpdateProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrAccountBlocked):
			response.Error[any](c, http.StatusForbidden, "user not allowed", nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		default:
			h.Logger.WithError(err).Error("update profile failed")
			response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		}
		return
	}
	saved, _ := h.Svc.SavedProperties(c.Request.Context(), u.ID)
	response.Success(c, http.StatusOK, identityView(updated, saved), "profile updated", nil)
}

// ToggleSave POST /api/users/save/:propertyId
func (h *UserHandler) ToggleSave(c *gin.Context) {
	u, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	propertyID := c.Param("propertyId")

	saved, ids, err := h.Svc.ToggleSaveProperty(c.Request.Context(), u, propertyID)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrAccountBlocked):
			response.Error[any](c, http.StatusForbidden, "user not allowed", nil)
		case errors.Is(err, application.ErrPropertyNotFound):
			response.Error[any](c, http.StatusNotFound, "property not found", nil)
		default:
			h.Logger.WithError(err).Error("toggle save failed")
			response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"saved":            saved,
		"saved_properties": ids,
	}, "saved listings updated", nil)
}
