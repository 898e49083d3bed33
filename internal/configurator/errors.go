package configurator

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownVariant    = errors.New("unknown variant")
	ErrUnknownPricing    = errors.New("unknown pricing for variant")
	ErrOfferExpired      = errors.New("offer has ended")
	ErrUnknownSupplement = errors.New("unknown supplement")
	ErrUnknownIngredient = errors.New("unknown ingredient")
	ErrUnknownOption     = errors.New("unknown pack option")
	ErrSlotOutOfRange    = errors.New("pack slot out of range")
	ErrNotPack           = errors.New("item is not a special pack")
	ErrPackQuantity      = errors.New("special packs are ordered one at a time")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrUnknownDrink      = errors.New("unknown drink")
	ErrDrinkNotEligible  = errors.New("drink is not included in this offer")
	ErrFreeDrinkLimit    = errors.New("free drink limit exceeded")
	ErrSavedNotFound     = errors.New("saved order not found")
)

// Validation failure codes.
const (
	CodeNoVariant          = "no_variant"
	CodeSizeRequired       = "size_required"
	CodeFreeDrinksRequired = "free_drinks_required"
)

// ValidationFailure is a user-correctable problem. It is returned, never
// panicked, and the configuration is left untouched.
type ValidationFailure struct {
	Code     string `json:"code"`
	Reason   string `json:"reason"`
	Required int    `json:"required,omitempty"`
}

func (f *ValidationFailure) Error() string {
	return f.Reason
}

func failNoVariant() *ValidationFailure {
	return &ValidationFailure{Code: CodeNoVariant, Reason: "select a variant or save an order."}
}

func failSize() *ValidationFailure {
	return &ValidationFailure{Code: CodeSizeRequired, Reason: "select a size."}
}

func failFreeDrinks(n int) *ValidationFailure {
	return &ValidationFailure{
		Code:     CodeFreeDrinksRequired,
		Reason:   fmt.Sprintf("select your %d complimentary drink(s).", n),
		Required: n,
	}
}
