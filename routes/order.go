package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/sweetdreams-bakery/storefront/controllers/order"
	"github.com/sweetdreams-bakery/storefront/middleware"
	"gorm.io/gorm"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	// Anyone holding an order reference can follow its status.
	r.GET("/orders/track/:orderID", orderControllers.GetOrderHandler(db))

	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken(deps.Tokens))
	{
		orders.POST("/checkout", orderControllers.PlaceOrderHandler(db, deps.Engine))
		orders.GET("/mine", middleware.RequireUser, orderControllers.GetMyOrdersHandler(db))
		orders.GET("/:orderID", orderControllers.GetOrderHandler(db))
		orders.POST("/:orderID/cancel", orderControllers.CancelOrderHandler(deps.Engine))
		orders.POST("/:orderID/reorder", orderControllers.ReorderHandler(db, deps.Engine))
	}
}
