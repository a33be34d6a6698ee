package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cart belongs to exactly one owner: a registered user id or a guest id.
type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	OwnerID   string     `gorm:"uniqueIndex;not null" json:"owner_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one cart line. UnitPrice is captured when the line is first added.
type CartItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CartID       uint            `gorm:"uniqueIndex:idx_cart_line" json:"cart_id"`
	ProductID    uint            `gorm:"uniqueIndex:idx_cart_line" json:"product_id"`
	Options      string          `gorm:"uniqueIndex:idx_cart_line;not null;default:''" json:"options"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	AddedAt      time.Time       `json:"added_at"`
}

// CartLine is the snapshot handed to checkout.
type CartLine struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Options     string          `json:"options"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Key returns the cart key: "<id>" or "<id>_<options>".
func (l CartLine) Key() string {
	return CartKey(l.ProductID, l.Options)
}

func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func CartKey(productID uint, options string) string {
	id := strconv.FormatUint(uint64(productID), 10)
	if options == "" {
		return id
	}
	return id + "_" + options
}

// ParseCartKey splits a cart key back into product id and options.
// Options may themselves contain underscores; only the first one separates.
func ParseCartKey(key string) (uint, string, error) {
	idPart, options, _ := strings.Cut(strings.TrimSpace(key), "_")
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, "", &ValidationError{Field: "cart_key", Message: fmt.Sprintf("invalid cart key %q", key)}
	}
	return uint(id), options, nil
}

func (i CartItem) Line() CartLine {
	return CartLine{
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Options:     i.Options,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
	}
}

// LinesTotal sums quantity × unit price over lines.
func LinesTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}
