package palette

import (
	"fmt"
	"sync"
)

// Registry is the ordered list of palette items. Registration order is
// display order.
type Registry struct {
	mu    sync.RWMutex
	items []Item
	index map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add appends items in order. It stops at the first invalid or duplicate
// item; items before it stay registered.
func (r *Registry) Add(items ...Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range items {
		it := items[i]
		if err := it.Validate(); err != nil {
			return err
		}
		if _, exists := r.index[it.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID)
		}
		it.Keywords = append([]string(nil), it.Keywords...)
		r.index[it.ID] = len(r.items)
		r.items = append(r.items, it)
	}
	return nil
}

// Remove deletes the item with the given id.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return false
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	r.reindex()
	return true
}

// RemoveBySource deletes every item registered by source and returns how
// many were removed.
func (r *Registry) RemoveBySource(source string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, it := range r.items {
		if it.Source != source {
			kept = append(kept, it)
		}
	}
	n := len(r.items) - len(kept)
	r.items = kept
	r.reindex()
	return n
}

func (r *Registry) reindex() {
	r.index = make(map[string]int, len(r.items))
	for i, it := range r.items {
		r.index[it.ID] = i
	}
}

// Get returns the item with the given id.
func (r *Registry) Get(id string) (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return Item{}, false
	}
	return r.items[i], true
}

// Items returns a copy of the registered items in order.
func (r *Registry) Items() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Item(nil), r.items...)
}

// Len returns the number of registered items.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Filter returns the items matching query, grouped.
func (r *Registry) Filter(query string) []Group {
	return Filter(r.Items(), query)
}

// Suggest returns the keyword closest to query among the registered items.
func (r *Registry) Suggest(query string) (string, bool) {
	return Suggest(r.Items(), query)
}
