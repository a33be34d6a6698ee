package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/sweetdreams-bakery/storefront/controllers/admin"
	cartControllers "github.com/sweetdreams-bakery/storefront/controllers/cart"
	orderControllers "github.com/sweetdreams-bakery/storefront/controllers/order"
	productcontroller "github.com/sweetdreams-bakery/storefront/controllers/product"
	userControllers "github.com/sweetdreams-bakery/storefront/controllers/user"
	"github.com/sweetdreams-bakery/storefront/middleware"
	"gorm.io/gorm"
)

// SetupAdminRoutes registers all "/admin/*" endpoints.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin(deps.Tokens, deps.AdminAPIKey))
	{
		// ─────────── Dashboard & Users ───────────
		adminGroup.GET("/stats", orderControllers.GetDailyStatsHandler(db))
		adminGroup.GET("/users", userControllers.GetAllUsers(db))
		adminGroup.GET("/carts/:owner_id", cartControllers.GetOwnerCart(db))

		// ─────────── Admin Accounts ───────────
		adminMgmt := adminGroup.Group("/admins")
		{
			adminMgmt.GET("", adminController.GetAllAdmins(db))
			adminMgmt.POST("/promote", adminController.PromoteAdmin(db))
			adminMgmt.POST("/demote", adminController.DemoteAdmin(db))
		}

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.GET("", productcontroller.GetAdminProducts(db))
			productAdmin.POST("", productcontroller.CreateProduct(db, deps.UploadDir))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(db, deps.UploadDir))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(db, deps.UploadDir))
			productAdmin.POST("/:id/stock", productcontroller.AdjustStock(db))
			productAdmin.POST("/:id/toggle-availability", productcontroller.ToggleAvailability(db))
			productAdmin.POST("/:id/toggle-featured", productcontroller.ToggleFeatured(db))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(db))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(db))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productcontroller.CreateCategory(db))
			categoryAdmin.PUT("/:id", productcontroller.UpdateCategory(db))
			categoryAdmin.DELETE("/:id", productcontroller.DeleteCategory(db))
		}

		// ─────────── Order Workflow ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(db))
			orderAdmin.GET("/ws", deps.Hub.Handler)
			orderAdmin.GET("/export-excel", orderControllers.ExportOrdersToExcel(db))
			orderAdmin.GET("/:orderID", orderControllers.GetOrderHandler(db))
			orderAdmin.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(deps.Engine))
			orderAdmin.POST("/:orderID/cancel", orderControllers.CancelOrderHandler(deps.Engine))
			orderAdmin.DELETE("/:orderID", orderControllers.DeleteOrderHandler(deps.Engine))
		}
	}
}
