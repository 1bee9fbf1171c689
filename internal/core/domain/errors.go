package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("sweet not found")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidSweetID  = errors.New("invalid sweet id")
	ErrInvalidSweet    = errors.New("invalid sweet payload")
	ErrForbidden       = errors.New("operation is not allowed")
	ErrUnauthenticated = errors.New("authentication required")
)

// InsufficientStockError reports a failed conditional decrement
// together with the quantity still available.
type InsufficientStockError struct {
	SweetID   string
	Available int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock: only %d item(s) available", e.Available,
	)
}

// CartValidationError marks a cart payload line the reconciler rejected.
type CartValidationError struct {
	SweetID string
	Reason  error
}

func (e CartValidationError) Error() string {
	return fmt.Sprintf("invalid cart line %q: %v", e.SweetID, e.Reason)
}

func (e CartValidationError) Unwrap() error {
	return e.Reason
}
