// Package middleware provides HTTP middleware for the todo service.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/GunarsK-portfolio/todo-service/internal/httputil"
	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"github.com/GunarsK-portfolio/todo-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key holding the authenticated identity.
const IdentityKey = "identity"

type ctxKeyIdentity struct{}

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.Identity, error)
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity{}, identity)
}

// IdentityFromContext returns the identity stored by Auth.
func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(ctxKeyIdentity{}).(*models.Identity)
	return identity, ok && identity != nil
}

// GetIdentity returns the authenticated identity of the request.
func GetIdentity(c *gin.Context) (*models.Identity, bool) {
	if v, ok := c.Get(IdentityKey); ok {
		if identity, ok := v.(*models.Identity); ok && identity != nil {
			return identity, true
		}
	}
	return IdentityFromContext(c.Request.Context())
}

// Auth requires a valid "Authorization: Bearer <token>" header and attaches
// the decoded identity to the request.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httputil.RespondError(c, http.StatusUnauthorized, "no token provided")
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			httputil.RespondError(c, http.StatusUnauthorized, "invalid token format")
			return
		}

		identity, err := validator.ValidateToken(token)
		if err != nil {
			logger.FromContext(c.Request.Context()).WithError(err).Debug("token rejected")
			httputil.RespondError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := WithIdentity(c.Request.Context(), identity)
		entry := logger.FromContext(ctx).WithField("user_id", identity.UserID)
		c.Request = c.Request.WithContext(logger.WithContext(ctx, entry))
		c.Set(IdentityKey, identity)
		c.Next()
	}
}
