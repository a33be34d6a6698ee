package adminController

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

type roleRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SetRole changes the role of the account registered under email. Demoting
// the last remaining admin is refused so the back office cannot lock itself out.
func SetRole(db *gorm.DB, email string, role models.Role) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.NotFoundError{Resource: "user", ID: email}
			}
			return err
		}
		if user.Role == role {
			return nil
		}
		if user.Role == models.RoleAdmin {
			var admins int64
			if err := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return &models.ValidationError{Field: "email", Message: "cannot demote the last admin"}
			}
		}
		user.Role = role
		return tx.Model(&user).Update("role", role).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// POST /admin/admins/promote
func PromoteAdmin(db *gorm.DB) gin.HandlerFunc {
	return roleHandler(db, models.RoleAdmin, "User promoted to admin")
}

// POST /admin/admins/demote
func DemoteAdmin(db *gorm.DB) gin.HandlerFunc {
	return roleHandler(db, models.RoleCustomer, "Admin demoted to customer")
}

func roleHandler(db *gorm.DB, role models.Role, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req roleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		user, err := SetRole(db.WithContext(c.Request.Context()), req.Email, role)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": message, "user": user})
	}
}
