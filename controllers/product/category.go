package productcontroller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name         string `json:"name"`
	NameEN       string `json:"name_en"`
	Icon         string `json:"icon"`
	Description  string `json:"description"`
	DisplayOrder *int   `json:"display_order"`
}

func findCategory(db *gorm.DB, id uint) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Resource: "category", ID: id}
		}
		return nil, err
	}
	return &category, nil
}

func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		input.Name = strings.TrimSpace(input.Name)
		if input.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		category := models.Category{
			Name:        input.Name,
			NameEN:      strings.TrimSpace(input.NameEN),
			Icon:        input.Icon,
			Description: input.Description,
		}
		if input.DisplayOrder != nil {
			category.DisplayOrder = *input.DisplayOrder
		}

		if err := db.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Failed to create category, name may already exist"})
			return
		}

		c.JSON(http.StatusCreated, category)
	}
}

// GetAllCategories returns all categories in menu order.
func GetAllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.WithContext(c.Request.Context()).
			Order("display_order ASC, id ASC").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GetCategoryByID returns a category with the products currently on sale in it.
func GetCategoryByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var category models.Category
		err := db.WithContext(c.Request.Context()).
			Preload("Products", func(tx *gorm.DB) *gorm.DB {
				return tx.Where("is_available = ?", true).Order("name ASC")
			}).
			First(&category, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, &models.NotFoundError{Resource: "category", ID: id})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
			return
		}

		c.JSON(http.StatusOK, category)
	}
}

func UpdateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}
		db := db.WithContext(c.Request.Context())

		category, err := findCategory(db, id)
		if err != nil {
			respond.Error(c, err)
			return
		}

		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if v := strings.TrimSpace(input.Name); v != "" {
			category.Name = v
		}
		if v := strings.TrimSpace(input.NameEN); v != "" {
			category.NameEN = v
		}
		if input.Icon != "" {
			category.Icon = input.Icon
		}
		if input.Description != "" {
			category.Description = input.Description
		}
		if input.DisplayOrder != nil {
			category.DisplayOrder = *input.DisplayOrder
		}

		if err := db.Save(category).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Failed to update category"})
			return
		}

		c.JSON(http.StatusOK, category)
	}
}

// DeleteCategory removes a category. Its products stay on the menu without a category.
func DeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			category, err := findCategory(tx, id)
			if err != nil {
				return err
			}
			if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
				UpdateColumn("category_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(category).Error
		})
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
