package session

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrItemMismatch    = errors.New("cart line belongs to another item")
)

// CatalogLoadFailure means the item could not be loaded. The session was not
// opened and the caller may retry.
type CatalogLoadFailure struct {
	ItemID string
	Err    error
}

func (e *CatalogLoadFailure) Error() string {
	return fmt.Sprintf("load catalog item %s: %v", e.ItemID, e.Err)
}

func (e *CatalogLoadFailure) Unwrap() error {
	return e.Err
}

func (e *CatalogLoadFailure) Retryable() bool {
	return true
}
