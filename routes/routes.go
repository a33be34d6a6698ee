package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/auth"
	orderControllers "github.com/sweetdreams-bakery/storefront/controllers/order"
	"gorm.io/gorm"
)

// Deps are the long-lived services the handlers share.
type Deps struct {
	Tokens      *auth.Manager
	Engine      *orderControllers.Engine
	Hub         *orderControllers.Hub
	AdminAPIKey string
	UploadDir   string
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public auth routes
	SetupAuthRoutes(r, db, deps)

	// Catalog, profile and cart
	SetupUserRoutes(r, db, deps)

	// Checkout, history, cancel and reorder
	SetupOrderRoutes(r, db, deps)

	// Admin routes (API key or admin token)
	SetupAdminRoutes(r, db, deps)
}
