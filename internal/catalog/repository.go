package catalog

import (
	"context"
	"errors"
)

var ErrItemNotFound = errors.New("menu item not found")

// Repository is the catalog collaborator the configurator reads from.
type Repository interface {

	// Full item snapshot: variants, pricing tiers, supplements, deals
	FetchEnhancedItem(ctx context.Context, itemID string) (*Model, error)

	// Drinks-category items of a restaurant (best effort for callers)
	FetchDrinks(ctx context.Context, restaurantID string) ([]Drink, error)
}
