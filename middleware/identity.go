package middleware

import (
	"net/http"
	"strings"

	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

const (
	// ActorKey is the gin context key holding the caller's external identity.
	ActorKey      = "actorID"
	ActorIDHeader = "X-Actor-ID"
)

// IdentityMiddleware resolves the caller's stable external identity. With
// a secret configured it must come from a bearer token whose subject is
// the identity; without one the trusted front end passes it in X-Actor-ID.
func IdentityMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var actor string
		if jwtSecret != "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
				return
			}
			sub, err := utils.ActorFromToken(jwtSecret, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			actor = sub
		} else {
			actor = strings.TrimSpace(c.GetHeader(ActorIDHeader))
			if actor == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing " + ActorIDHeader + " header"})
				return
			}
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// ActorID returns the identity set by IdentityMiddleware.
func ActorID(c *gin.Context) string {
	return c.GetString(ActorKey)
}
