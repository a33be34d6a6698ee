package userControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/controllers/respond"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

type AddressInput struct {
	RecipientName string `json:"recipient_name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Address       string `json:"address" binding:"required"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
}

func (in AddressInput) apply(a *models.Address) {
	a.RecipientName = strings.TrimSpace(in.RecipientName)
	a.Phone = strings.TrimSpace(in.Phone)
	a.Address = strings.TrimSpace(in.Address)
	a.City = strings.TrimSpace(in.City)
	a.Province = strings.TrimSpace(in.Province)
	a.PostalCode = strings.TrimSpace(in.PostalCode)
}

// ownAddress loads an address of the current user. Other users' addresses read as missing.
func ownAddress(db *gorm.DB, userID, addressID uint) (*models.Address, error) {
	var addr models.Address
	err := db.Where("id = ? AND user_id = ?", addressID, userID).First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Resource: "address", ID: addressID}
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// GET /user/addresses
func ListAddresses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := respond.UserID(c)
		if userID == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var addresses []models.Address
		if err := db.WithContext(c.Request.Context()).Where("user_id = ?", *userID).Order("id").Find(&addresses).Error; err != nil {
			respond.Error(c, err)
			return
		}
		out := make([]gin.H, 0, len(addresses))
		for _, a := range addresses {
			out = append(out, gin.H{"address": a, "full_address": a.ShippingText()})
		}
		c.JSON(http.StatusOK, out)
	}
}

// POST /user/addresses
func CreateAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := respond.UserID(c)
		if userID == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		addr := models.Address{UserID: *userID}
		input.apply(&addr)
		if err := db.WithContext(c.Request.Context()).Create(&addr).Error; err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, addr)
	}
}

// PUT /user/addresses/:id
func UpdateAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := respond.UserID(c)
		if userID == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}
		var input AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		db := db.WithContext(c.Request.Context())
		addr, err := ownAddress(db, *userID, id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		input.apply(addr)
		if err := db.Save(addr).Error; err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, addr)
	}
}

// DELETE /user/addresses/:id. Orders keep their copied address text.
func DeleteAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := respond.UserID(c)
		if userID == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}
		db := db.WithContext(c.Request.Context())
		addr, err := ownAddress(db, *userID, id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		if err := db.Delete(addr).Error; err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
	}
}
