package identity

import "github.com/gin-gonic/gin"

// ContextClaims is the gin context key holding the request's Claims.
const ContextClaims = "claims"

// SetClaims stores the authenticated claims on the request context.
func SetClaims(c *gin.Context, claims Claims) {
	c.Set(ContextClaims, claims)
}

// ClaimsFrom returns the claims stored by the auth middleware, or an empty set.
func ClaimsFrom(c *gin.Context) Claims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(Claims); ok {
			return claims
		}
	}
	return MapClaims{}
}

// FromGin returns a Policy over the request's claims.
func FromGin(c *gin.Context) Policy {
	return NewPolicy(ClaimsFrom(c))
}
