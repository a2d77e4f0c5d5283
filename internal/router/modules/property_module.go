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

// PropertyModule exposes the public catalog and the agent-scoped management
// routes on the same prefix.
type PropertyModule struct {
	Handler *handlers.PropertyHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewPropertyModule(handler *handlers.PropertyHandler, users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client) *PropertyModule {
	return &PropertyModule{Handler: handler, Users: users, JWT: jwt, Redis: rdb}
}

func (m *PropertyModule) Register(rg *gin.RouterGroup) {
	pub := rg.Group("/properties")
	pub.GET("", m.Handler.List)
	pub.GET("/:id", m.Handler.Get)

	mgmt := rg.Group("/properties",
		middleware.Auth(m.Users, m.JWT),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP()),
		middleware.RequireRole(entity.RoleAgent),
	)
	mgmt.POST("", m.Handler.Create)
	mgmt.PUT("/:id", m.Handler.Update)
	mgmt.DELETE("/:id", m.Handler.Delete)
}
