package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"orderconfig/internal/cart"
	"orderconfig/internal/catalog"
)

var errDatabaseDown = errors.New("database down")

func testItem() *catalog.Model {
	return &catalog.Model{
		ItemID:       "burger",
		RestaurantID: "r1",
		Name:         "Burger",
		Variants: []catalog.Variant{
			{ID: "V1", Name: "Classic"},
			{ID: "V2", Name: "Double"},
		},
		Pricing: []catalog.Pricing{
			{ID: "P1", VariantID: "V1", Size: "M", Price: decimal.RequireFromString("10.00"), IsDefault: true,
				FreeDrinksIncluded: true, FreeDrinksQuantity: 1, FreeDrinksList: []string{"D1"}},
			{ID: "P3", VariantID: "V2", Size: "M", Price: decimal.RequireFromString("14.00"), IsDefault: true},
		},
	}
}

func testDrinks() []catalog.Drink {
	return []catalog.Drink{{ID: "D1", Name: "Cola", Price: decimal.RequireFromString("2.50")}}
}

// stubRepo serves one item and can fail either fetch.
type stubRepo struct {
	item      *catalog.Model
	itemErr   error
	drinks    []catalog.Drink
	drinksErr error
}

func (r *stubRepo) FetchEnhancedItem(ctx context.Context, itemID string) (*catalog.Model, error) {
	if r.itemErr != nil {
		return nil, r.itemErr
	}
	if r.item == nil || r.item.ItemID != itemID {
		return nil, catalog.ErrItemNotFound
	}
	cp := *r.item
	return &cp, nil
}

func (r *stubRepo) FetchDrinks(ctx context.Context, restaurantID string) ([]catalog.Drink, error) {
	if r.drinksErr != nil {
		return nil, r.drinksErr
	}
	return r.drinks, nil
}

// recordingStore counts every write that reaches the cart. failNext fails
// the next Replace; with hold set, each Replace reports on entered and waits
// for hold to close.
type recordingStore struct {
	inner *cart.InMemoryStore

	mu       sync.Mutex
	appends  int
	replaces int
	failNext error

	hold    chan struct{}
	entered chan struct{}
}

func newRecordingStore() *recordingStore {
	return &recordingStore{inner: cart.NewInMemoryStore()}
}

func (s *recordingStore) ForCustomer(customerID string) cart.Cart {
	return &recordingCart{Cart: s.inner.ForCustomer(customerID), store: s}
}

func (s *recordingStore) writes() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appends, s.replaces
}

type recordingCart struct {
	cart.Cart
	store *recordingStore
}

func (c *recordingCart) Append(ctx context.Context, line cart.LineItem) error {
	c.store.mu.Lock()
	c.store.appends++
	c.store.mu.Unlock()
	return c.Cart.Append(ctx, line)
}

func (c *recordingCart) Replace(ctx context.Context, remove []string, add []cart.LineItem) error {
	c.store.mu.Lock()
	c.store.replaces++
	fail := c.store.failNext
	c.store.failNext = nil
	hold, entered := c.store.hold, c.store.entered
	c.store.mu.Unlock()

	if fail != nil {
		return fail
	}
	if hold != nil {
		entered <- struct{}{}
		<-hold
	}
	return c.Cart.Replace(ctx, remove, add)
}

// memoryArchive keeps the last snapshot per customer.
type memoryArchive struct {
	mu    sync.Mutex
	carts map[string][]cart.LineItem
	err   error
}

func (a *memoryArchive) ArchiveCart(ctx context.Context, customerID, sessionID string, lines []cart.LineItem) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if a.carts == nil {
		a.carts = map[string][]cart.LineItem{}
	}
	a.carts[customerID] = lines
	return nil
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
