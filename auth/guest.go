package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

// POST /auth/guest
func CreateGuestUser(db *gorm.DB, tokens *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID, err := newGuestID()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guest"})
			return
		}

		guest := models.GuestUser{
			ID:        guestID,
			ExpiresAt: time.Now().Add(tokens.GuestTTL()),
		}
		if err := db.WithContext(c.Request.Context()).Create(&guest).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guest"})
			return
		}

		token, expires, err := tokens.IssueGuest(guestID, guest.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"guest_id":   guestID,
			"token":      token,
			"expires_at": expires,
		})
	}
}

func newGuestID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "guest_" + hex.EncodeToString(b), nil
}

// PurgeExpiredGuests deletes guests whose tokens have expired along with their carts.
func PurgeExpiredGuests(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	var purged int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := models.ExpiredGuests(now)(tx.Model(&models.GuestUser{}).Select("id"))
		carts := tx.Model(&models.Cart{}).Select("cart_id").Where("owner_id IN (?)", expired)

		if err := tx.Where("cart_id IN (?)", carts).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id IN (?)", expired).Delete(&models.Cart{}).Error; err != nil {
			return err
		}
		res := tx.Scopes(models.ExpiredGuests(now)).Delete(&models.GuestUser{})
		purged = res.RowsAffected
		return res.Error
	})
	return purged, err
}
