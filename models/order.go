package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // Placed, stock reserved
	OrderStatusProcessing OrderStatus = "processing" // Being prepared by the bakery
	OrderStatusCompleted  OrderStatus = "completed"  // Handed over to the customer
	OrderStatusCancelled  OrderStatus = "cancelled"  // Stock returned to the shelf
)

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  nil,
	OrderStatusCancelled:  nil,
}

// ParseOrderStatus maps user input onto a known status.
func ParseOrderStatus(status string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if _, ok := orderTransitions[s]; !ok {
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("invalid order status %q", status)}
	}
	return s, nil
}

// CanTransition reports whether the workflow allows moving from s to to.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	next, ok := orderTransitions[s]
	return ok && len(next) == 0
}

type Order struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	OrderRef        string           `gorm:"uniqueIndex;type:varchar(64)" json:"order_ref"`
	UserID          *uint            `gorm:"index" json:"user_id"`
	Items           []OrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	StatusLogs      []OrderStatusLog `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_logs,omitempty"`
	TotalAmount     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status          OrderStatus      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CustomerName    string           `gorm:"not null" json:"customer_name"`
	CustomerPhone   string           `gorm:"not null" json:"customer_phone"`
	ShippingAddress string           `json:"shipping_address"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// OrderItem copies the price at order time so history survives catalog edits.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	ProductID   uint            `gorm:"index;not null" json:"product_id"`
	ProductName string          `json:"product_name"`
	Options     string          `json:"options"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
}

type OrderStatusLog struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"index;not null" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	ChangedBy *uint       `json:"changed_by"`
	ChangedAt time.Time   `json:"changed_at"`
}

// OwnedBy reports whether userID placed the order. Guest orders have no owner.
func (o Order) OwnedBy(userID *uint) bool {
	return o.UserID != nil && userID != nil && *o.UserID == *userID
}
