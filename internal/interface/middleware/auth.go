package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
	"github.com/homehunt/homehunt-api/pkg/helpers"
	"github.com/homehunt/homehunt-api/pkg/response"
)

// Context keys set by Auth on success.
const (
	CtxUserIDKey   = "userID"
	CtxIdentityKey = "identity"
)

// Auth is the access guard: it extracts the session cookie, verifies the
// token signature and expiry, and resolves the subject to its identity so
// downstream handlers can authorize on role/flags. All failure shapes are
// the same 401 to keep token and account state indistinguishable.
func Auth(users repository.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookieName)
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseSessionToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
			c.Abort()
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			status := http.StatusInternalServerError
			msg := "server error"
			if errors.Is(err, repository.ErrNotFound) {
				status = http.StatusUnauthorized
				msg = "not authorized"
			}
			response.Error[any](c, status, msg, nil)
			c.Abort()
			return
		}

		// Never carry the password hash through the request context.
		u.Password = ""
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxIdentityKey, u)
		c.Next()
	}
}

// Identity returns the authenticated identity attached by Auth.
func Identity(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok
}
