package models

import (
	"time"

	"gorm.io/gorm"
)

// GuestUser is an anonymous shopping session. Its ID doubles as the cart
// owner key until the guest signs in or the session is purged.
type GuestUser struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpiredGuests scopes a query to guest sessions that lapsed before now.
func ExpiredGuests(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at < ?", now)
	}
}
