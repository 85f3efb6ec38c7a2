package palette

import "sync"

// History tracks recently invoked items, most recent first.
type History struct {
	mu       sync.Mutex
	items    []string
	maxItems int
}

// NewHistory creates a history holding at most maxItems ids.
func NewHistory(maxItems int) *History {
	if maxItems <= 0 {
		maxItems = 20
	}
	return &History{
		items:    make([]string, 0, maxItems),
		maxItems: maxItems,
	}
}

// Add records an invocation, moving id to the front.
func (h *History) Add(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, item := range h.items {
		if item == id {
			h.items = append(h.items[:i], h.items[i+1:]...)
			break
		}
	}
	h.items = append([]string{id}, h.items...)
	if len(h.items) > h.maxItems {
		h.items = h.items[:h.maxItems]
	}
}

// Recent returns up to limit ids, most recent first. A limit of zero or
// less returns them all.
func (h *History) Recent(limit int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 || limit > len(h.items) {
		limit = len(h.items)
	}
	result := make([]string, limit)
	copy(result, h.items[:limit])
	return result
}

// Len returns the number of recorded ids.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}
