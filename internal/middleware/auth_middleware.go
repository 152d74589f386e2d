// internal/middleware/auth_middleware.go
package middleware

import (
	"strings"

	"groupgate-service/internal/pkg/response"
	"groupgate-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

const (
	ctxAdminID    = "admin_id"
	ctxAdminEmail = "admin_email"
)

// AuthMiddleware validates the bearer token and stores the admin identity in
// the request context.
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header")
			return
		}

		claims, err := authService.VerifyToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ctxAdminID, claims.AdminID)
		c.Set(ctxAdminEmail, claims.Email)
		c.Next()
	}
}

// GetAdminID gets the authenticated admin ID from context
func GetAdminID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxAdminID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetAdminID gets the authenticated admin ID or panics. Only call behind
// AuthMiddleware.
func MustGetAdminID(c *gin.Context) int64 {
	id, exists := GetAdminID(c)
	if !exists {
		panic("admin_id not found in context")
	}
	return id
}
