package cartControllers

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Session is the cart of one owner (a "user_<id>" or "guest_<hex>" key).
// Checkout and reorder receive it explicitly instead of reaching for ambient state.
type Session struct {
	db      *gorm.DB
	ownerID string
}

func NewSession(db *gorm.DB, ownerID string) *Session {
	return &Session{db: db, ownerID: ownerID}
}

func (s *Session) OwnerID() string { return s.ownerID }

// cart loads the owner's cart, creating it on first use.
func (s *Session) cart(tx *gorm.DB) (*models.Cart, error) {
	var cart models.Cart
	if err := tx.Where(models.Cart{OwnerID: s.ownerID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Items returns the cart rows in insertion order. A missing cart is empty.
func (s *Session) Items(ctx context.Context) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Where("cart_id IN (?)", s.cartIDs()).
		Order("id").
		Find(&items).Error
	return items, err
}

// Snapshot returns the lines checkout turns into order items.
func (s *Session) Snapshot(ctx context.Context) ([]models.CartLine, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	lines := make([]models.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.Line())
	}
	return lines, nil
}

// Summary returns the total quantity and price of the cart.
func (s *Session) Summary(ctx context.Context) (int, decimal.Decimal, error) {
	lines, err := s.Snapshot(ctx)
	if err != nil {
		return 0, decimal.Zero, err
	}
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count, models.LinesTotal(lines), nil
}

// Add puts quantity units of a product on the cart. Adding an existing key is
// additive and keeps the price captured when the line was first added.
func (s *Session) Add(ctx context.Context, productID uint, quantity int, options string) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var item *models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := models.FindProduct(tx, productID)
		if err != nil {
			return err
		}
		if !product.IsAvailable {
			return &models.ValidationError{Field: "product_id", Message: "product is not available"}
		}
		cart, err := s.cart(tx)
		if err != nil {
			return err
		}
		item, err = addLine(tx, cart.CartID, models.CartItem{
			ProductID:    product.ID,
			Options:      options,
			ProductName:  product.Name,
			ProductImage: product.Image,
			UnitPrice:    product.Price,
			Quantity:     quantity,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func addLine(tx *gorm.DB, cartID uint, line models.CartItem) (*models.CartItem, error) {
	var existing models.CartItem
	err := tx.Where("cart_id = ? AND product_id = ? AND options = ?", cartID, line.ProductID, line.Options).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Quantity += line.Quantity
		if err := tx.Model(&existing).Update("quantity", existing.Quantity).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		line.ID = 0
		line.CartID = cartID
		line.AddedAt = time.Now()
		if err := tx.Create(&line).Error; err != nil {
			return nil, err
		}
		return &line, nil
	default:
		return nil, err
	}
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
func (s *Session) SetQuantity(ctx context.Context, key string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, key)
	}
	productID, options, err := models.ParseCartKey(key)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("cart_id IN (?) AND product_id = ? AND options = ?", s.cartIDs(), productID, options).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Resource: "cart item", ID: key}
	}
	return nil
}

func (s *Session) Remove(ctx context.Context, key string) error {
	productID, options, err := models.ParseCartKey(key)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("cart_id IN (?) AND product_id = ? AND options = ?", s.cartIDs(), productID, options).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Resource: "cart item", ID: key}
	}
	return nil
}

// Clear empties the cart. Checkout passes its transaction so the cart is only
// emptied when the order commits; a nil tx uses the session's own handle.
func (s *Session) Clear(tx *gorm.DB) error {
	if tx == nil {
		tx = s.db
	}
	return tx.Where("cart_id IN (?)", tx.Model(&models.Cart{}).Select("cart_id").Where("owner_id = ?", s.ownerID)).
		Delete(&models.CartItem{}).Error
}

// Consume takes the checked-out lines out of the cart inside the checkout
// transaction. Each line loses the quantity that was ordered; anything added
// after the snapshot was taken stays in the cart.
func (s *Session) Consume(tx *gorm.DB, lines []models.CartLine) error {
	if tx == nil {
		tx = s.db
	}
	cartIDs := tx.Model(&models.Cart{}).Select("cart_id").Where("owner_id = ?", s.ownerID)
	for _, line := range lines {
		if err := tx.Model(&models.CartItem{}).
			Where("cart_id IN (?) AND product_id = ? AND options = ?", cartIDs, line.ProductID, line.Options).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", line.Quantity)).Error; err != nil {
			return err
		}
	}
	return tx.Where("cart_id IN (?) AND quantity <= 0", cartIDs).Delete(&models.CartItem{}).Error
}

// Upsert writes line under its key, overwriting quantity and price if the key exists.
func (s *Session) Upsert(tx *gorm.DB, line models.CartLine) error {
	if tx == nil {
		tx = s.db
	}
	cart, err := s.cart(tx)
	if err != nil {
		return err
	}
	item := models.CartItem{
		CartID:      cart.CartID,
		ProductID:   line.ProductID,
		Options:     line.Options,
		ProductName: line.ProductName,
		UnitPrice:   line.UnitPrice,
		Quantity:    line.Quantity,
		AddedAt:     time.Now(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "options"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "unit_price", "product_name", "added_at"}),
	}).Create(&item).Error
}

func (s *Session) cartIDs() *gorm.DB {
	return s.db.Model(&models.Cart{}).Select("cart_id").Where("owner_id = ?", s.ownerID)
}

// MergeCarts moves every line of the from-owner's cart into the to-owner's cart,
// adding quantities on shared keys. It returns the number of lines moved.
func MergeCarts(ctx context.Context, db *gorm.DB, fromOwner, toOwner string) (int, error) {
	if fromOwner == "" || fromOwner == toOwner {
		return 0, nil
	}
	moved := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		from := NewSession(tx, fromOwner)
		items, err := from.Items(ctx)
		if err != nil || len(items) == 0 {
			return err
		}
		to, err := NewSession(tx, toOwner).cart(tx)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, err := addLine(tx, to.CartID, item); err != nil {
				return err
			}
			moved++
		}
		return from.Clear(tx)
	})
	return moved, err
}
