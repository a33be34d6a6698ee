package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

type StockAdjustment struct {
	Delta int `json:"delta" binding:"required"`
}

// UpdateProduct updates an existing product by ID.
// Accepts the same fields as CreateProduct, all optional, and an optional "image" file.
func UpdateProduct(db *gorm.DB, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}
		db := db.WithContext(c.Request.Context())

		product, err := models.FindProduct(db, id)
		if err != nil {
			respond.Error(c, err)
			return
		}

		if v := strings.TrimSpace(c.PostForm("name")); v != "" {
			product.Name = v
		}
		if v, ok := c.GetPostForm("name_en"); ok {
			product.NameEN = strings.TrimSpace(v)
		}
		if v, ok := c.GetPostForm("description"); ok {
			product.Description = strings.TrimSpace(v)
		}
		if v := c.PostForm("price"); v != "" {
			if product.Price, err = parsePrice(v); err != nil {
				respond.Error(c, err)
				return
			}
		}
		if v := c.PostForm("stock_quantity"); v != "" {
			if product.StockQuantity, err = parseStock(v); err != nil {
				respond.Error(c, err)
				return
			}
		}
		if v, ok := c.GetPostForm("category_id"); ok {
			if product.CategoryID, err = parseCategoryID(db, v); err != nil {
				respond.Error(c, err)
				return
			}
		}
		product.IsAvailable = formBool(c, "is_available", product.IsAvailable)
		product.IsFeatured = formBool(c, "is_featured", product.IsFeatured)

		oldImage := product.Image
		if file, err := c.FormFile("image"); err == nil {
			if product.Image, err = saveImage(c, file, uploadDir); err != nil {
				respond.Error(c, err)
				return
			}
		}

		if err := db.Save(product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		if oldImage != product.Image {
			removeImage(uploadDir, oldImage)
		}

		c.JSON(http.StatusOK, product)
	}
}

// POST /admin/products/:id/stock adds or removes units. Removals use the same
// guarded decrement as checkout and never take stock below zero.
func AdjustStock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}
		var input StockAdjustment
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "delta must be a non-zero integer"})
			return
		}

		stock, err := ApplyStockDelta(db.WithContext(c.Request.Context()), id, input.Delta)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product_id": id, "stock_quantity": stock})
	}
}

// ApplyStockDelta changes a product's stock by delta and returns the new level.
func ApplyStockDelta(db *gorm.DB, productID uint, delta int) (int, error) {
	var stock int
	err := db.Transaction(func(tx *gorm.DB) error {
		product, err := models.FindProduct(tx, productID)
		if err != nil {
			return err
		}
		if delta >= 0 {
			err = models.RestoreStock(tx, productID, delta)
		} else {
			var applied bool
			applied, err = models.DecrementStock(tx, productID, -delta)
			if err == nil && !applied {
				available, _ := models.CurrentStock(tx, productID)
				err = &models.InsufficientStockError{ProductID: productID, Name: product.Name, Requested: -delta, Available: available}
			}
		}
		if err != nil {
			return err
		}
		stock, err = models.CurrentStock(tx, productID)
		return err
	})
	return stock, err
}

// POST /admin/products/:id/toggle-availability
func ToggleAvailability(db *gorm.DB) gin.HandlerFunc {
	return toggleFlag(db, "is_available")
}

// POST /admin/products/:id/toggle-featured
func ToggleFeatured(db *gorm.DB) gin.HandlerFunc {
	return toggleFlag(db, "is_featured")
}

func toggleFlag(db *gorm.DB, column string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}
		var product *models.Product
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Product{}).Where("id = ?", id).
				UpdateColumn(column, gorm.Expr("NOT "+column))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &models.NotFoundError{Resource: "product", ID: id}
			}
			var err error
			product, err = models.FindProduct(tx, id)
			return err
		})
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"product_id":   product.ID,
			"is_available": product.IsAvailable,
			"is_featured":  product.IsFeatured,
		})
	}
}
