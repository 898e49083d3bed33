package catalog

import (
	"context"
	"sync"
)

type InMemoryRepository struct {
	mu     sync.RWMutex
	items  map[string]*Model
	drinks map[string][]Drink
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		items:  make(map[string]*Model),
		drinks: make(map[string][]Drink),
	}
}

func (r *InMemoryRepository) PutItem(m *Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[m.ItemID] = m
}

func (r *InMemoryRepository) PutDrinks(restaurantID string, drinks []Drink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drinks[restaurantID] = drinks
}

func (r *InMemoryRepository) FetchEnhancedItem(ctx context.Context, itemID string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *InMemoryRepository) FetchDrinks(ctx context.Context, restaurantID string) ([]Drink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Drink(nil), r.drinks[restaurantID]...), nil
}
