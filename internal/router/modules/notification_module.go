package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/homehunt/homehunt-api/internal/domain/repository"
	handlers "github.com/homehunt/homehunt-api/internal/interface/http"
	"github.com/homehunt/homehunt-api/internal/interface/middleware"
	"github.com/homehunt/homehunt-api/pkg/helpers"
)

type NotificationModule struct {
	Handler *handlers.NotificationHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewNotificationModule(handler *handlers.NotificationHandler, users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client) *NotificationModule {
	return &NotificationModule{Handler: handler, Users: users, JWT: jwt, Redis: rdb}
}

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/notifications",
		middleware.Auth(m.Users, m.JWT),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP()),
	)

	g.GET("", m.Handler.My)
	g.PUT("/:id/read", m.Handler.MarkRead)
}
