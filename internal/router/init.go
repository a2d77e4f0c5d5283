package router

import (
	"github.com/gin-gonic/gin"

	"github.com/homehunt/homehunt-api/internal/application"
	"github.com/homehunt/homehunt-api/internal/container"
	"github.com/homehunt/homehunt-api/internal/infrastructure/postgres"
	handlers "github.com/homehunt/homehunt-api/internal/interface/http"
	"github.com/homehunt/homehunt-api/internal/router/modules"
)

// Init assembles repositories, services, handlers and modules from the
// container singletons and registers every route on the engine.
func Init(engine *gin.Engine) *Registry {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	rdb := container.GetRedis()
	jwt := container.GetJWT()

	users := postgres.NewUserRepository(pool)
	properties := postgres.NewPropertyRepository(pool)
	notifications := postgres.NewNotificationRepository(pool)

	authSvc := application.NewAuthService(users, jwt, container.GetMailgun(), cfg.MailSendEnabled, cfg.OTPTTL, logger)
	userSvc := application.NewUserService(users, properties, notifications, container.GetRabbitPub(), cfg.MailSendEnabled, logger)
	propertySvc := application.NewPropertyService(properties, container.GetGCS(), cfg.GCSBucket, rdb, logger)
	notificationSvc := application.NewNotificationService(notifications)

	authHandler := handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(userSvc, logger)
	propertyHandler := handlers.NewPropertyHandler(propertySvc, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationSvc, logger)
	agentHandler := handlers.NewAgentHandler(propertySvc, logger)

	reg := NewRegistry(engine)
	reg.Add(modules.NewAuthModule(authHandler, rdb))
	reg.Add(modules.NewUserModule(userHandler, users, jwt, rdb))
	reg.Add(modules.NewPropertyModule(propertyHandler, users, jwt, rdb))
	reg.Add(modules.NewNotificationModule(notificationHandler, users, jwt, rdb))
	reg.Add(modules.NewAgentModule(agentHandler, propertyHandler, users, jwt, rdb))
	reg.RegisterAll()

	return reg
}
