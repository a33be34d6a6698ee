package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"gorm.io/gorm"
)

type AddCartItemInput struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Options   string `json:"options"`
}

type UpdateCartItemInput struct {
	CartKey  string `json:"cart_key" binding:"required"`
	Quantity int    `json:"quantity"`
}

// SessionFromContext builds the cart of the authenticated caller.
func SessionFromContext(c *gin.Context, db *gorm.DB) (*Session, bool) {
	ownerID := c.GetString("owner_id")
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return NewSession(db, ownerID), true
}

func respondWithTotals(c *gin.Context, session *Session, status int, extra gin.H) {
	count, total, err := session.Summary(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	body := gin.H{
		"success":     true,
		"total_items": count,
		"total_price": total.StringFixed(2),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// GET /cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c, db)
		if !ok {
			return
		}
		items, err := session.Items(c.Request.Context())
		if err != nil {
			respond.Error(c, err)
			return
		}
		respondWithTotals(c, session, http.StatusOK, gin.H{"items": items})
	}
}

// GET /cart/summary
func CartSummary(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c, db)
		if !ok {
			return
		}
		respondWithTotals(c, session, http.StatusOK, nil)
	}
}

// POST /cart/items
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c, db)
		if !ok {
			return
		}
		var input AddCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		item, err := session.Add(c.Request.Context(), input.ProductID, input.Quantity, input.Options)
		if err != nil {
			respond.Error(c, err)
			return
		}
		respondWithTotals(c, session, http.StatusOK, gin.H{
			"message": "Added " + item.ProductName + " to cart",
			"item":    item,
		})
	}
}

// PUT /cart/items
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c, db)
		if !ok {
			return
		}
		var input UpdateCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if err := session.SetQuantity(c.Request.Context(), input.CartKey, input.Quantity); err != nil {
			respond.Error(c, err)
			return
		}
		respondWithTotals(c, session, http.StatusOK, nil)
	}
}

// DELETE /cart/items/:key
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c, db)
		if !ok {
			return
		}
		if err := session.Remove(c.Request.Context(), c.Param("key")); err != nil {
			respond.Error(c, err)
			return
		}
		respondWithTotals(c, session, http.StatusOK, nil)
	}
}

// DELETE /cart
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFromContext(c, db)
		if !ok {
			return
		}
		if err := session.Clear(db.WithContext(c.Request.Context())); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "Cart cleared",
			"total_items": 0,
			"total_price": "0.00",
		})
	}
}

// GET /admin/carts/:owner_id
func GetOwnerCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.Param("owner_id")
		if ownerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required"})
			return
		}
		session := NewSession(db, ownerID)
		items, err := session.Items(c.Request.Context())
		if err != nil {
			respond.Error(c, err)
			return
		}
		respondWithTotals(c, session, http.StatusOK, gin.H{"items": items, "owner_id": ownerID})
	}
}
