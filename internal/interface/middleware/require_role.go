package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homehunt/homehunt-api/pkg/response"
)

// RequireRole gates a route group to the given roles. Must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		u, ok := Identity(c)
		if !ok {
			response.Error[any](c, http.StatusUnauthorized, "not authorized", nil)
			c.Abort()
			return
		}
		if _, ok := allowed[u.Role]; !ok {
			response.Error[any](c, http.StatusForbidden, "forbidden", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
