package configurator

import "orderconfig/internal/cart"

// SavedEntry is a compiled order parked by "save and add another" together
// with the selection it came from.
type SavedEntry struct {
	Lines    []cart.LineItem
	Snapshot State
}

// SavedOrderBuffer holds orders compiled but not yet committed in one
// session. It is never persisted.
type SavedOrderBuffer struct {
	entries []SavedEntry
}

func (b *SavedOrderBuffer) Append(e SavedEntry) {
	b.entries = append(b.entries, e)
}

func (b *SavedOrderBuffer) Remove(i int) error {
	if i < 0 || i >= len(b.entries) {
		return ErrSavedNotFound
	}
	b.entries = append(b.entries[:i:i], b.entries[i+1:]...)
	return nil
}

func (b *SavedOrderBuffer) Len() int {
	return len(b.entries)
}

func (b *SavedOrderBuffer) Entries() []SavedEntry {
	return append([]SavedEntry(nil), b.entries...)
}

// Lines flattens every buffered order in save order.
func (b *SavedOrderBuffer) Lines() []cart.LineItem {
	var out []cart.LineItem
	for _, e := range b.entries {
		out = append(out, e.Lines...)
	}
	return out
}

func (b *SavedOrderBuffer) Clear() {
	b.entries = nil
}
