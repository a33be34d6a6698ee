package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/auth"
	"github.com/sweetdreams-bakery/storefront/middleware"
	"gorm.io/gorm"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register(db, deps.Tokens))
		authGroup.POST("/login", auth.Login(db, deps.Tokens))
		authGroup.POST("/guest", auth.CreateGuestUser(db, deps.Tokens))

		authGroup.POST("/change-password",
			middleware.ValidateToken(deps.Tokens),
			middleware.RequireUser,
			auth.ChangePassword(db, deps.Tokens))
	}
}
