package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/models"
	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// ContextIdentityKey is the gin context key storing the resolved
// *models.CurrentUser, including the degraded flag.
const ContextIdentityKey = "currentIdentity"

// JWT protects routes by requiring a valid access token and resolving
// the caller's identity against the user store. When the store is
// unreachable the cached session identity is used and the request is
// marked degraded.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		identity, err := authService.ResolveCurrentUser(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextIdentityKey, identity)
		if identity.Degraded {
			c.Set(response.ContextDegradedKey, true)
		}
		c.Next()
	}
}

// Identity returns the resolved current user stored by JWT, or nil.
func Identity(c *gin.Context) *models.CurrentUser {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*models.CurrentUser)
	if !ok {
		return nil
	}
	return identity
}
