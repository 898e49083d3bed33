package cart

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	mu    sync.Mutex
	lines map[string][]LineItem
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{lines: make(map[string][]LineItem)}
}

func (s *InMemoryStore) ForCustomer(customerID string) Cart {
	return &memoryCart{store: s, customerID: customerID}
}

type memoryCart struct {
	store      *InMemoryStore
	customerID string
}

func (c *memoryCart) Append(ctx context.Context, line LineItem) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.lines[c.customerID] = append(c.store.lines[c.customerID], line)
	return nil
}

func (c *memoryCart) Items(ctx context.Context) ([]LineItem, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return append([]LineItem(nil), c.store.lines[c.customerID]...), nil
}

func (c *memoryCart) Remove(ctx context.Context, lineID string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	lines := c.store.lines[c.customerID]
	for i, l := range lines {
		if l.ID == lineID {
			c.store.lines[c.customerID] = append(lines[:i:i], lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

func (c *memoryCart) Replace(ctx context.Context, remove []string, add []LineItem) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	lines := append([]LineItem(nil), c.store.lines[c.customerID]...)
	for _, id := range remove {
		found := false
		for i, l := range lines {
			if l.ID == id {
				lines = append(lines[:i:i], lines[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return ErrLineNotFound
		}
	}
	c.store.lines[c.customerID] = append(lines, add...)
	return nil
}
