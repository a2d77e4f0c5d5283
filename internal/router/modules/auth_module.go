package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/homehunt/homehunt-api/internal/interface/http"
	"github.com/homehunt/homehunt-api/internal/interface/middleware"
)

// AuthModule wires the OTP registration and session endpoints.
// send-otp and register are limited per IP+path, login per IP.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client
}

func NewAuthModule(handler *handlers.AuthHandler, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: handler, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	allow := middleware.AllowPrivateIP()
	g := rg.Group("/auth")

	g.POST("/send-otp",
		middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), allow),
		m.Handler.SendOTP)
	g.POST("/register",
		middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), allow),
		m.Handler.Register)
	g.POST("/login",
		middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIP(), allow),
		m.Handler.Login)
	g.POST("/logout", m.Handler.Logout)
}
