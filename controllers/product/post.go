package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || price.IsNegative() {
		return decimal.Zero, &models.ValidationError{Field: "price", Message: "must be a non-negative amount"}
	}
	return price.Round(2), nil
}

func parseStock(raw string) (int, error) {
	stock, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || stock < 0 {
		return 0, &models.ValidationError{Field: "stock_quantity", Message: "must be a whole number of zero or more"}
	}
	return stock, nil
}

func parseCategoryID(db *gorm.DB, raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, &models.ValidationError{Field: "category_id", Message: "invalid category id"}
	}
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", id64).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &models.NotFoundError{Resource: "category", ID: id64}
	}
	id := uint(id64)
	return &id, nil
}

func formBool(c *gin.Context, key string, fallback bool) bool {
	v, ok := c.GetPostForm(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return v == "on"
	}
	return b
}

// CreateProduct creates a product from a multipart form with an optional image.
func CreateProduct(db *gorm.DB, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := db.WithContext(c.Request.Context())

		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" || c.PostForm("price") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and price are required"})
			return
		}
		price, err := parsePrice(c.PostForm("price"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		stock := 0
		if raw := c.PostForm("stock_quantity"); raw != "" {
			if stock, err = parseStock(raw); err != nil {
				respond.Error(c, err)
				return
			}
		}
		categoryID, err := parseCategoryID(db, c.PostForm("category_id"))
		if err != nil {
			respond.Error(c, err)
			return
		}

		product := models.Product{
			Name:          name,
			NameEN:        strings.TrimSpace(c.PostForm("name_en")),
			Description:   strings.TrimSpace(c.PostForm("description")),
			Price:         price,
			CategoryID:    categoryID,
			IsAvailable:   formBool(c, "is_available", true),
			IsFeatured:    formBool(c, "is_featured", false),
			StockQuantity: stock,
		}

		if file, err := c.FormFile("image"); err == nil {
			if product.Image, err = saveImage(c, file, uploadDir); err != nil {
				respond.Error(c, err)
				return
			}
		}

		if err := db.Create(&product).Error; err != nil {
			removeImage(uploadDir, product.Image)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		c.JSON(http.StatusCreated, product)
	}
}
