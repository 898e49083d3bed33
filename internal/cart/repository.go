package cart

import (
	"context"
	"errors"
)

var ErrLineNotFound = errors.New("cart line not found")

// Cart is the authoritative cart of one customer.
type Cart interface {
	Append(ctx context.Context, line LineItem) error
	Items(ctx context.Context) ([]LineItem, error)
	Remove(ctx context.Context, lineID string) error
	// Replace removes the given lines and appends the new ones as one unit.
	// Nothing changes when any removal fails.
	Replace(ctx context.Context, remove []string, add []LineItem) error
}

// Store hands out per-customer carts.
type Store interface {
	ForCustomer(customerID string) Cart
}
