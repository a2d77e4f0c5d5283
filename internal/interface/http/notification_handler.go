package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homehunt/homehunt-api/internal/application"
	"github.com/homehunt/homehunt-api/internal/interface/middleware"
	"github.com/homehunt/homehunt-api/pkg/response"
)

type NotificationHandler struct {
	Svc    *application.NotificationService
	Logger *logrus.Logger
}

func NewNotificationHandler(svc *application.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{Svc: svc, Logger: logger}
}

// My GET /api/notifications
func (h *NotificationHandler) My(c *gin.Context) {
	u, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	items, err := h.Svc.MyNotifications(c.Request.Context(), u.ID)
	if err != nil {
		h.Logger.WithError(err).Error("list notifications failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch notifications", nil)
		return
	}
	response.Success(c, http.StatusOK, items, "notifications", nil)
}

// MarkRead PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	u, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	if err := h.Svc.MarkRead(c.Request.Context(), c.Param("id"), u.ID); err != nil {
		if errors.Is(err, application.ErrNotificationNotFound) {
			response.Error[any](c, http.StatusNotFound, "notification not found", nil)
			return
		}
		h.Logger.WithError(err).Error("mark notification read failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"success": true}, "notification read", nil)
}
