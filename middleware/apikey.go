package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/auth"
	"github.com/sweetdreams-bakery/storefront/models"
)

// RequireAdmin lets a request through with a matching X-API-KEY header or an
// admin bearer token. An empty apiKey disables key access.
func RequireAdmin(tokens *auth.Manager, apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-KEY"); key != "" {
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
				c.Abort()
				return
			}
			c.Set(KeyRole, string(models.RoleAdmin))
			c.Next()
			return
		}

		claims, err := tokens.Parse(c.GetHeader("Authorization"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			c.Abort()
			return
		}
		if !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
