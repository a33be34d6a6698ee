package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	Orders    []Order   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"orders,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Address is an address-book entry. Orders copy its text instead of referencing it.
type Address struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	RecipientName string    `gorm:"not null" json:"recipient_name"`
	Phone         string    `gorm:"not null" json:"phone"`
	Address       string    `gorm:"not null" json:"address"`
	City          string    `json:"city"`
	Province      string    `json:"province"`
	PostalCode    string    `json:"postal_code"`
	CreatedAt     time.Time `json:"created_at"`
}

// ShippingText renders the snapshot stored on an order:
// "<recipient>, <address>, <city>, <postal code>, <province>" without empty parts.
func (a Address) ShippingText() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.RecipientName, a.Address, a.City, a.PostalCode, a.Province} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
