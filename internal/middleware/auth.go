package middleware

import (
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleKey is the gin context key holding the authenticated role.
const RoleKey = "role"

// TokenVerifier validates an admin token. auth.Service satisfies it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAdmin rejects requests without a valid admin token with 401.
func RequireAdmin(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.Verify(auth.ExtractAccessToken(c.Request))
		if err != nil {
			logger.FromCtx(c.Request.Context()).Warn("admin access denied",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}
