package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

// Actor is whoever asks the engine to act on an order.
type Actor struct {
	UserID *uint
	Admin  bool
}

// Cart is the caller's cart as seen by the engine. Consume and Upsert run inside
// the engine's transaction.
type Cart interface {
	Snapshot(ctx context.Context) ([]models.CartLine, error)
	Consume(tx *gorm.DB, lines []models.CartLine) error
	Upsert(tx *gorm.DB, line models.CartLine) error
}

// Notifier receives committed order changes.
type Notifier interface {
	Publish(event string, order models.Order)
}

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

type PlaceOrderInput struct {
	UserID          *uint
	Lines           []models.CartLine
	CustomerName    string
	CustomerPhone   string
	ShippingAddress string
	Notes           string
}

func (in PlaceOrderInput) validate() error {
	if len(in.Lines) == 0 {
		return &models.ValidationError{Field: "cart", Message: "cart is empty"}
	}
	for _, line := range in.Lines {
		if line.ProductID == 0 {
			return &models.ValidationError{Field: "product_id", Message: "cart line has no product"}
		}
		if line.Quantity < 1 {
			return &models.ValidationError{Field: "quantity", Message: fmt.Sprintf("quantity for product %d must be at least 1", line.ProductID)}
		}
		if line.UnitPrice.IsNegative() {
			return &models.ValidationError{Field: "unit_price", Message: fmt.Sprintf("price for product %d is negative", line.ProductID)}
		}
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return &models.ValidationError{Field: "customer_name", Message: "is required"}
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return &models.ValidationError{Field: "customer_phone", Message: "is required"}
	}
	return nil
}

// Engine owns every write that touches order rows and product stock.
type Engine struct {
	db       *gorm.DB
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewEngine builds an engine over db. notifier may be nil.
func NewEngine(db *gorm.DB, notifier Notifier) *Engine {
	return &Engine{
		db:       db,
		notifier: notifier,
		log:      slog.Default().With("module", "orders"),
		now:      time.Now,
	}
}

// Generate unique order reference
func newOrderRef(now time.Time) string {
	return now.Format("20060102150405") + "-" + uuid.NewString()
}

// PlaceOrder turns cart lines into a pending order in one transaction. Stock is
// taken with a guarded decrement per line; any line that cannot be covered
// rolls back the whole order. The ordered lines, when a cart is given, leave it
// in the same transaction.
func (e *Engine) PlaceOrder(ctx context.Context, in PlaceOrderInput, cart Cart) (uint, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	var order models.Order
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.UserID != nil {
			if err := requireUser(tx, *in.UserID); err != nil {
				return err
			}
		}

		items := make([]models.OrderItem, 0, len(in.Lines))
		total := decimal.Zero
		for _, line := range in.Lines {
			product, err := models.FindProduct(tx, line.ProductID)
			if err != nil {
				return err
			}
			name := line.ProductName
			if name == "" {
				name = product.Name
			}
			lineTotal := line.Total()
			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: name,
				Options:     line.Options,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				TotalPrice:  lineTotal,
			})
			total = total.Add(lineTotal)
		}

		now := e.now()
		order = models.Order{
			OrderRef:        newOrderRef(now),
			UserID:          in.UserID,
			Items:           items,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			CustomerName:    strings.TrimSpace(in.CustomerName),
			CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
			ShippingAddress: in.ShippingAddress,
			Notes:           in.Notes,
			CreatedAt:       now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i, line := range in.Lines {
			applied, err := models.DecrementStock(tx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !applied {
				available, _ := models.CurrentStock(tx, line.ProductID)
				return &models.InsufficientStockError{
					ProductID: line.ProductID,
					Name:      items[i].ProductName,
					Requested: line.Quantity,
					Available: available,
				}
			}
		}

		if err := logStatus(tx, order.ID, models.OrderStatusPending, in.UserID, now); err != nil {
			return err
		}
		if cart != nil {
			if err := cart.Consume(tx, in.Lines); err != nil {
				return fmt.Errorf("consume cart lines: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, models.AsPersistence("place order", err)
	}

	e.log.Info("order placed", "order_id", order.ID, "order_ref", order.OrderRef, "total", order.TotalAmount.StringFixed(2), "lines", len(order.Items))
	e.publish(EventOrderCreated, order)
	return order.ID, nil
}

// CancelOrder cancels a pending order and puts its quantities back on the shelf.
// Admins may cancel any pending order, customers only their own.
func (e *Engine) CancelOrder(ctx context.Context, orderID uint, requester Actor) error {
	var order *models.Order
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = loadOrder(tx, orderID)
		var notFound *models.NotFoundError
		switch {
		case errors.As(err, &notFound):
			return &models.NotCancellableError{OrderID: orderID, Reason: "order not found"}
		case err != nil:
			return err
		}
		if !requester.Admin && !order.OwnedBy(requester.UserID) {
			return &models.NotCancellableError{OrderID: orderID, Reason: "order belongs to another customer"}
		}
		if order.Status != models.OrderStatusPending {
			return &models.NotCancellableError{OrderID: orderID, Reason: "order is " + string(order.Status)}
		}

		ok, err := e.cancelWithin(tx, order, requester.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return &models.NotCancellableError{OrderID: orderID, Reason: "order is no longer pending"}
		}
		return nil
	})
	if err != nil {
		return models.AsPersistence("cancel order", err)
	}

	e.log.Info("order cancelled", "order_id", orderID, "admin", requester.Admin)
	e.publish(EventOrderStatusChanged, *order)
	return nil
}

// cancelWithin moves order from its loaded status to cancelled and restores its
// stock. It reports false without touching stock when another writer changed
// the status first.
func (e *Engine) cancelWithin(tx *gorm.DB, order *models.Order, by *uint) (bool, error) {
	ok, err := compareAndSetStatus(tx, order.ID, order.Status, models.OrderStatusCancelled)
	if err != nil || !ok {
		return false, err
	}
	for _, item := range order.Items {
		if err := models.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
			return false, err
		}
	}
	if err := logStatus(tx, order.ID, models.OrderStatusCancelled, by, e.now()); err != nil {
		return false, err
	}
	order.Status = models.OrderStatusCancelled
	return true, nil
}

// Reorder copies the items of a past order back into cart at today's prices,
// overwriting quantities of lines already there. Products that are gone or no
// longer available are skipped. It returns how many lines were staged.
func (e *Engine) Reorder(ctx context.Context, orderID uint, requester Actor, cart Cart) (int, error) {
	staged := 0
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !requester.Admin && !order.OwnedBy(requester.UserID) {
			return &models.PermissionError{Action: "reorder this order"}
		}

		var notFound *models.NotFoundError
		for _, item := range order.Items {
			product, err := models.FindProduct(tx, item.ProductID)
			if errors.As(err, &notFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !product.IsAvailable {
				continue
			}
			if err := cart.Upsert(tx, models.CartLine{
				ProductID:   product.ID,
				ProductName: product.Name,
				Options:     item.Options,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
			}); err != nil {
				return fmt.Errorf("stage cart line: %w", err)
			}
			staged++
		}
		return nil
	})
	if err != nil {
		return 0, models.AsPersistence("reorder", err)
	}
	return staged, nil
}

// TransitionStatus applies an admin status change. Moving to cancelled goes
// through the same stock-restoring path as CancelOrder.
func (e *Engine) TransitionStatus(ctx context.Context, orderID uint, status string, requester Actor) (*models.Order, error) {
	if !requester.Admin {
		return nil, &models.PermissionError{Action: "change order status"}
	}
	to, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err = loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		from := order.Status
		if !from.CanTransition(to) {
			return &models.InvalidTransitionError{OrderID: orderID, From: from, To: to}
		}

		var ok bool
		if to == models.OrderStatusCancelled {
			ok, err = e.cancelWithin(tx, order, requester.UserID)
		} else {
			ok, err = compareAndSetStatus(tx, orderID, from, to)
			if err == nil && ok {
				err = logStatus(tx, orderID, to, requester.UserID, e.now())
			}
		}
		if err != nil {
			return err
		}
		if !ok {
			return &models.InvalidTransitionError{OrderID: orderID, From: from, To: to}
		}
		order.Status = to
		return nil
	})
	if err != nil {
		return nil, models.AsPersistence("change order status", err)
	}

	e.log.Info("order status changed", "order_id", orderID, "status", to)
	e.publish(EventOrderStatusChanged, *order)
	return order, nil
}

// DeleteOrder removes a completed or cancelled order with its items and history.
// Live orders still hold stock and must be cancelled first.
func (e *Engine) DeleteOrder(ctx context.Context, orderID uint, requester Actor) error {
	if !requester.Admin {
		return &models.PermissionError{Action: "delete orders"}
	}
	var order *models.Order
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.Terminal() {
			return &models.ValidationError{Field: "status", Message: "only completed or cancelled orders can be deleted"}
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderStatusLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, orderID).Error
	})
	if err != nil {
		return models.AsPersistence("delete order", err)
	}
	e.publish(EventOrderDeleted, *order)
	return nil
}

func (e *Engine) publish(event string, order models.Order) {
	if e.notifier != nil {
		e.notifier.Publish(event, order)
	}
}

func loadOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Resource: "order", ID: orderID}
		}
		return nil, err
	}
	return &order, nil
}

// requireUser rejects orders for accounts that no longer exist, such as a
// deleted user whose token has not expired yet.
func requireUser(tx *gorm.DB, userID uint) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &models.NotFoundError{Resource: "user", ID: userID}
	}
	return nil
}

// compareAndSetStatus updates the status only if it still equals from.
func compareAndSetStatus(tx *gorm.DB, orderID uint, from, to models.OrderStatus) (bool, error) {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func logStatus(tx *gorm.DB, orderID uint, status models.OrderStatus, by *uint, at time.Time) error {
	return tx.Create(&models.OrderStatusLog{
		OrderID:   orderID,
		Status:    status,
		ChangedBy: by,
		ChangedAt: at,
	}).Error
}
