package catalog

import (
	"sync"
	"sync/atomic"
	"time"
)

// Holder publishes the current catalog. Readers always see a complete,
// immutable *Catalog; a reload swaps the pointer.
type Holder struct {
	current atomic.Pointer[Catalog]

	mu         sync.RWMutex
	lastReload time.Time
}

// NewHolder creates a holder serving c (an empty catalog if c is nil).
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	if c == nil {
		c = Empty()
	}
	h.current.Store(c)
	return h
}

// Current returns the catalog being served.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Swap replaces the served catalog.
func (h *Holder) Swap(c *Catalog) {
	if c == nil {
		c = Empty()
	}
	h.current.Store(c)

	h.mu.Lock()
	h.lastReload = time.Now()
	h.mu.Unlock()
}

// Lookup delegates to the current catalog.
func (h *Holder) Lookup(shortName string) (Product, bool) {
	return h.Current().Lookup(shortName)
}

// Count returns the number of products in the current catalog.
func (h *Holder) Count() int {
	return h.Current().Len()
}

// GetLastReload returns when the catalog was last swapped (zero if never).
func (h *Holder) GetLastReload() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastReload
}
