package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/sweetdreams-bakery/storefront/controllers/cart"
	productControllers "github.com/sweetdreams-bakery/storefront/controllers/product"
	userControllers "github.com/sweetdreams-bakery/storefront/controllers/user"
	"github.com/sweetdreams-bakery/storefront/middleware"
	"gorm.io/gorm"
)

// SetupUserRoutes registers the public catalog plus the token-protected profile and cart.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	// ──────────────── Browse Products ────────────────
	r.GET("/products", productControllers.GetProducts(db))
	r.GET("/products/:id", productControllers.GetProductByID(db))
	r.GET("/categories", productControllers.GetAllCategories(db))
	r.GET("/categories/:id", productControllers.GetCategoryByID(db))

	// ──────────────── User Profile ────────────────
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(deps.Tokens), middleware.RequireUser)
	{
		userGroup.GET("", userControllers.GetUser(db))
		userGroup.PUT("", userControllers.UpdateUser(db))

		userGroup.GET("/addresses", userControllers.ListAddresses(db))
		userGroup.POST("/addresses", userControllers.CreateAddress(db))
		userGroup.PUT("/addresses/:id", userControllers.UpdateAddress(db))
		userGroup.DELETE("/addresses/:id", userControllers.DeleteAddress(db))
	}

	// ──────────────── Shopping Cart (users and guests) ────────────────
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ValidateToken(deps.Tokens))
	{
		cartGroup.GET("", cartControllers.GetCart(db))
		cartGroup.GET("/summary", cartControllers.CartSummary(db))
		cartGroup.POST("/items", cartControllers.AddCartItem(db))
		cartGroup.PUT("/items", cartControllers.UpdateCartItem(db))
		cartGroup.DELETE("/items/:key", cartControllers.DeleteCartItem(db))
		cartGroup.DELETE("", cartControllers.ClearCart(db))
	}
}
