package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
	handlers "github.com/homehunt/homehunt-api/internal/interface/http"
	"github.com/homehunt/homehunt-api/internal/interface/middleware"
	"github.com/homehunt/homehunt-api/pkg/helpers"
)

// AgentModule hosts agent-only surfaces: the dashboard and the agent's own
// listings.
type AgentModule struct {
	Agent      *handlers.AgentHandler
	Properties *handlers.PropertyHandler
	Users      repository.UserRepository
	JWT        *helpers.JWTManager
	Redis      *redis.Client
}

func NewAgentModule(agent *handlers.AgentHandler, properties *handlers.PropertyHandler, users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client) *AgentModule {
	return &AgentModule{Agent: agent, Properties: properties, Users: users, JWT: jwt, Redis: rdb}
}

func (m *AgentModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/agents",
		middleware.Auth(m.Users, m.JWT),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP()),
		middleware.RequireRole(entity.RoleAgent),
	)

	g.GET("/dashboard", m.Agent.Dashboard)
	g.GET("/listings", m.Properties.My)
}
