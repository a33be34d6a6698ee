package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	NameEN        string          `json:"name_en"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Image         string          `json:"image"`
	CategoryID    *uint           `gorm:"index" json:"category_id"`
	Category      *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	IsAvailable   bool            `json:"is_available"`
	IsFeatured    bool            `json:"is_featured"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FindProduct loads a product by id, translating a missing row into a NotFoundError.
func FindProduct(db *gorm.DB, id uint) (*Product, error) {
	var product Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: id}
		}
		return nil, err
	}
	return &product, nil
}

// DecrementStock removes qty units from a product only when enough stock is left.
// The check and the write are a single conditional UPDATE; applied is false when
// the predicate did not hold (or the product does not exist).
func DecrementStock(tx *gorm.DB, productID uint, qty int) (applied bool, err error) {
	res := tx.Model(&Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RestoreStock puts qty units back on a product.
func RestoreStock(tx *gorm.DB, productID uint, qty int) error {
	return tx.Model(&Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty)).Error
}

// CurrentStock reads the stock column without locking. Only used for error reporting.
func CurrentStock(tx *gorm.DB, productID uint) (int, error) {
	var stock int
	err := tx.Model(&Product{}).Select("stock_quantity").Where("id = ?", productID).Row().Scan(&stock)
	return stock, err
}
