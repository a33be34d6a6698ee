package adminController

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

// GET /admin/admins
func GetAllAdmins(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var admins []models.User

		if err := db.WithContext(c.Request.Context()).
			Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
			slog.Default().With("module", "admin").Error("failed to fetch admins", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch admins"})
			return
		}

		c.JSON(http.StatusOK, admins)
	}
}
