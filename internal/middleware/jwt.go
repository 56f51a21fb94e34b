package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eros-estates/backend/internal/identity"
	"github.com/eros-estates/backend/pkg/response"
)

// TokenValidator turns a bearer token into the request's claim set.
type TokenValidator interface {
	Validate(token string) (identity.MapClaims, error)
}

// JWT returns a middleware that validates the bearer token and stores its claims in context.
// It only authenticates; identity.Policy decides what the caller may touch.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := validator.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		identity.SetClaims(c, claims)
		c.Next()
	}
}
