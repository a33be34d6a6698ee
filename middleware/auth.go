package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/auth"
)

// Context keys set for authenticated requests.
const (
	KeyClaims  = "claims"
	KeyUserID  = "user_id"
	KeyOwnerID = "owner_id"
	KeyRole    = "role"
)

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(KeyClaims, claims)
	c.Set(KeyOwnerID, claims.OwnerID())
	c.Set(KeyRole, claims.Role)
	if !claims.IsGuest() {
		c.Set(KeyUserID, claims.UserID)
	}
}

// ValidateToken requires a user or guest bearer token.
func ValidateToken(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireUser rejects guest tokens. It must run after ValidateToken.
func RequireUser(c *gin.Context) {
	if _, ok := c.Get(KeyUserID); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please sign in to continue"})
		c.Abort()
		return
	}
	c.Next()
}
