package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"name":       "name",
	"stock":      "stock_quantity",
}

// GetProducts lists available products for the storefront.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return listProducts(db, true)
}

// GetAdminProducts lists every product, available or not.
func GetAdminProducts(db *gorm.DB) gin.HandlerFunc {
	return listProducts(db, false)
}

func listProducts(db *gorm.DB, onlyAvailable bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.WithContext(c.Request.Context()).Model(&models.Product{}).Preload("Category")
		if onlyAvailable {
			query = query.Where("is_available = ?", true)
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(name_en) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
		}

		if raw := c.Query("category_id"); raw != "" {
			cid, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
				return
			}
			query = query.Where("category_id = ?", uint(cid))
		}

		if raw := c.Query("featured"); raw != "" {
			featured, err := strconv.ParseBool(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid featured"})
				return
			}
			query = query.Where("is_featured = ?", featured)
		}

		for param, op := range map[string]string{"min_price": ">=", "max_price": "<="} {
			raw := c.Query(param)
			if raw == "" {
				continue
			}
			price, err := decimal.NewFromString(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
				return
			}
			query = query.Where("price "+op+" ?", price)
		}

		column, ok := sortColumns[c.DefaultQuery("sort_by", "created_at")]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort_by"})
			return
		}
		sortOrder := strings.ToLower(c.DefaultQuery("order", "desc"))
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}

		var products []models.Product
		if err := query.Order(column + " " + sortOrder).Order("id").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
