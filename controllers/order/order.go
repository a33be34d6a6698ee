package orderControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	cartControllers "github.com/sweetdreams-bakery/storefront/controllers/cart"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

// -------- Request Structs --------
type PlaceOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	AddressID       *uint  `json:"address_id"`
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// -------- Helpers --------

func actorFrom(c *gin.Context) Actor {
	return Actor{UserID: respond.UserID(c), Admin: respond.IsAdmin(c)}
}

// resolveShippingAddress turns an address-book entry into the text stored on the order.
func resolveShippingAddress(db *gorm.DB, userID *uint, req PlaceOrderRequest) (string, error) {
	if req.AddressID == nil {
		return req.ShippingAddress, nil
	}
	if userID == nil {
		return "", &models.ValidationError{Field: "address_id", Message: "guests must enter the address as text"}
	}
	var addr models.Address
	err := db.Where("id = ? AND user_id = ?", *req.AddressID, *userID).First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &models.NotFoundError{Resource: "address", ID: *req.AddressID}
	}
	if err != nil {
		return "", err
	}
	return addr.ShippingText(), nil
}

func findOrder(db *gorm.DB, idOrRef string) (*models.Order, error) {
	query := db.Preload("Items").Preload("StatusLogs", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("changed_at, id")
	})

	var order models.Order
	var err error
	if id, convErr := strconv.ParseUint(idOrRef, 10, 64); convErr == nil {
		err = query.First(&order, id).Error
	} else {
		err = query.Where("order_ref = ?", idOrRef).First(&order).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Resource: "order", ID: idOrRef}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// -------- Handlers --------

// POST /orders/checkout
func PlaceOrderHandler(db *gorm.DB, engine *Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := cartControllers.SessionFromContext(c, db)
		if !ok {
			return
		}
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		userID := respond.UserID(c)
		shipping, err := resolveShippingAddress(db.WithContext(ctx), userID, req)
		if err != nil {
			respond.Error(c, err)
			return
		}
		lines, err := session.Snapshot(ctx)
		if err != nil {
			respond.Error(c, err)
			return
		}

		orderID, err := engine.PlaceOrder(ctx, PlaceOrderInput{
			UserID:          userID,
			Lines:           lines,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			ShippingAddress: shipping,
			Notes:           req.Notes,
		}, session)
		if err != nil {
			respond.Error(c, err)
			return
		}

		order, err := findOrder(db.WithContext(ctx), strconv.FormatUint(uint64(orderID), 10))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success":   true,
			"message":   "Order placed successfully",
			"order_id":  order.ID,
			"order_ref": order.OrderRef,
			"order":     order,
		})
	}
}

// GET /orders/mine
func GetMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := respond.UserID(c)
		if userID == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "sign in to see your order history"})
			return
		}
		var orders []models.Order
		if err := db.WithContext(c.Request.Context()).
			Where("user_id = ?", *userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:orderID accepts a numeric id (owner or admin) or an order_ref.
// The reference is unguessable, so holding it is enough to track the order.
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("orderID")
		order, err := findOrder(db.WithContext(c.Request.Context()), key)
		if err != nil {
			respond.Error(c, err)
			return
		}
		_, numeric := strconv.ParseUint(key, 10, 64)
		actor := actorFrom(c)
		if numeric == nil && !actor.Admin && !order.OwnedBy(actor.UserID) {
			respond.Error(c, &models.PermissionError{Action: "view this order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /orders/:orderID/cancel
func CancelOrderHandler(engine *Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := respond.ParamID(c, "orderID")
		if !ok {
			return
		}
		if err := engine.CancelOrder(c.Request.Context(), orderID, actorFrom(c)); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order cancelled and stock restored"})
	}
}

// POST /orders/:orderID/reorder
func ReorderHandler(db *gorm.DB, engine *Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := respond.ParamID(c, "orderID")
		if !ok {
			return
		}
		session, ok := cartControllers.SessionFromContext(c, db)
		if !ok {
			return
		}
		staged, err := engine.Reorder(c.Request.Context(), orderID, actorFrom(c), session)
		if err != nil {
			respond.Error(c, err)
			return
		}
		if staged == 0 {
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"staged":  0,
				"message": "No items could be added; the products may be unavailable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"staged":  staged,
			"message": "Added " + strconv.Itoa(staged) + " items to cart",
		})
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.WithContext(c.Request.Context()).Preload("Items").Order("created_at DESC")
		if raw := c.Query("status"); raw != "" {
			status, err := models.ParseOrderStatus(raw)
			if err != nil {
				respond.Error(c, err)
				return
			}
			query = query.Where("status = ?", status)
		}
		if raw := c.Query("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			query = query.Limit(limit)
		}

		var orders []models.Order
		if err := query.Find(&orders).Error; err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// PUT /admin/orders/:orderID/status
func UpdateOrderStatusHandler(engine *Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := respond.ParamID(c, "orderID")
		if !ok {
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := engine.TransitionStatus(c.Request.Context(), orderID, req.Status, actorFrom(c))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "status": order.Status})
	}
}

// DELETE /admin/orders/:orderID
func DeleteOrderHandler(engine *Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := respond.ParamID(c, "orderID")
		if !ok {
			return
		}
		if err := engine.DeleteOrder(c.Request.Context(), orderID, actorFrom(c)); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}
