package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homehunt/homehunt-api/internal/application"
	"github.com/homehunt/homehunt-api/internal/interface/middleware"
	"github.com/homehunt/homehunt-api/pkg/response"
)

type AgentHandler struct {
	Properties *application.PropertyService
	Logger     *logrus.Logger
}

func NewAgentHandler(properties *application.PropertyService, logger *logrus.Logger) *AgentHandler {
	return &AgentHandler{Properties: properties, Logger: logger}
}

// Dashboard GET /api/agents/dashboard (agent only)
func (h *AgentHandler) Dashboard(c *gin.Context) {
	u, ok := middleware.Identity(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	count, err := h.Properties.CountByOwner(c.Request.Context(), u.ID)
	if err != nil {
		h.Logger.WithError(err).Error("count listings failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"agent_id":      u.ID,
		"listing_count": count,
	}, "welcome agent", nil)
}
