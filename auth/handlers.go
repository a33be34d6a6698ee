package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cartControllers "github.com/sweetdreams-bakery/storefront/controllers/cart"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type RegisterInput struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

func checkNewPassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return &models.ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}
	if password != confirm {
		return &models.ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	}
	return nil
}

// POST /auth/register
func Register(db *gorm.DB, tokens *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.Username = strings.TrimSpace(input.Username)
		input.Email = strings.ToLower(strings.TrimSpace(input.Email))
		if err := checkNewPassword(input.Password, input.ConfirmPassword); err != nil {
			respond.Error(c, err)
			return
		}

		db := db.WithContext(c.Request.Context())
		var taken int64
		if err := db.Model(&models.User{}).
			Where("username = ? OR email = ?", input.Username, input.Email).
			Count(&taken).Error; err != nil {
			respond.Error(c, err)
			return
		}
		if taken > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
			return
		}

		hash, err := tokens.HashPassword(input.Password)
		if err != nil {
			respond.Error(c, err)
			return
		}
		user := models.User{
			Username: input.Username,
			Email:    input.Email,
			Password: hash,
			FullName: strings.TrimSpace(input.FullName),
			Phone:    strings.TrimSpace(input.Phone),
			Role:     models.RoleCustomer,
		}
		if err := db.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
				return
			}
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Registration successful, please sign in", "user": user})
	}
}

// POST /auth/login. A guest bearer token on the request has its cart merged
// into the account's cart.
func Login(db *gorm.DB, tokens *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		var user models.User
		err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(input.Username)).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, err)
			return
		}
		if err != nil || !CheckPassword(user.Password, input.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}

		token, expires, err := tokens.IssueUser(user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		merged := 0
		if guest, err := tokens.Parse(c.GetHeader("Authorization")); err == nil && guest.IsGuest() {
			merged, err = cartControllers.MergeCarts(ctx, db, guest.OwnerID(), UserOwnerID(user.ID))
			if err != nil {
				slog.Default().With("module", "auth").Warn("guest cart merge failed", "guest_id", guest.GuestID, "user_id", user.ID, "error", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"token":             token,
			"expires_at":        expires,
			"role":              user.Role,
			"user":              user,
			"merged_cart_items": merged,
		})
	}
}

// POST /auth/change-password
func ChangePassword(db *gorm.DB, tokens *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := respond.UserID(c)
		if userID == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input ChangePasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		db := db.WithContext(c.Request.Context())
		var user models.User
		if err := db.First(&user, *userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if !CheckPassword(user.Password, input.CurrentPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
			return
		}
		if err := checkNewPassword(input.NewPassword, input.ConfirmPassword); err != nil {
			respond.Error(c, err)
			return
		}

		hash, err := tokens.HashPassword(input.NewPassword)
		if err != nil {
			respond.Error(c, err)
			return
		}
		if err := db.Model(&user).Update("password", hash).Error; err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
	}
}
