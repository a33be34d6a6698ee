package models

import (
	"errors"
	"fmt"
)

// ValidationError is raised before any mutation when input is unusable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// InsufficientStockError names the product whose guarded decrement did not apply.
type InsufficientStockError struct {
	ProductID uint
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return "not allowed to " + e.Action
}

// NotCancellableError covers a missing order, a non-pending order, and a foreign order alike.
type NotCancellableError struct {
	OrderID uint
	Reason  string
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("order %d cannot be cancelled: %s", e.OrderID, e.Reason)
}

type InvalidTransitionError struct {
	OrderID uint
	From    OrderStatus
	To      OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d cannot move from %s to %s", e.OrderID, e.From, e.To)
}

// PersistenceError wraps a store failure. The unit of work has been rolled back and
// the caller may retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsDomainError reports whether err already belongs to the taxonomy above.
func IsDomainError(err error) bool {
	var (
		validation  *ValidationError
		stock       *InsufficientStockError
		notFound    *NotFoundError
		permission  *PermissionError
		cancellable *NotCancellableError
		transition  *InvalidTransitionError
		persistence *PersistenceError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &stock) ||
		errors.As(err, &notFound) ||
		errors.As(err, &permission) ||
		errors.As(err, &cancellable) ||
		errors.As(err, &transition) ||
		errors.As(err, &persistence)
}

// AsPersistence leaves domain errors untouched and wraps everything else.
func AsPersistence(op string, err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
