package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/eros-estates/backend/internal/identity"
	"github.com/eros-estates/backend/pkg/response"
)

// RequireAdmin allows only callers whose is-admin claim is true.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, err := identity.FromGin(c).IsAdmin()
		if err != nil {
			response.Unauthorized(c, "unauthorized")
			c.Abort()
			return
		}
		if !admin {
			response.Forbidden(c, "admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}
