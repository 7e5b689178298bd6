package middleware

import (
	"net/http"

	"github.com/GunarsK-portfolio/todo-service/internal/httputil"
	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"github.com/GunarsK-portfolio/todo-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RequireRole allows the request through only if the authenticated identity
// holds one of roles. It must run after Auth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			httputil.RespondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}

		if !identity.Role.In(roles...) {
			logger.FromContext(c.Request.Context()).
				WithField("role", identity.Role).
				WithField("required_roles", roles).
				Debug("insufficient permissions")
			httputil.RespondError(c, http.StatusForbidden, "insufficient permissions")
			return
		}

		c.Next()
	}
}
