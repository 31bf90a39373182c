// Package catalog tracks the ordered set of category labels the service knows.
// The set only grows: once a label is listed it is listed forever.
package catalog

import (
	"sync"

	"github.com/Veraticus/finshare-ai/internal/model"
)

// Catalog is an append-only, ordered set of categories.
type Catalog struct {
	index map[model.Category]struct{}
	names []model.Category
	mu    sync.RWMutex
}

// New creates a catalog seeded with the given categories. Other is always present.
func New(categories ...model.Category) *Catalog {
	c := &Catalog{index: make(map[model.Category]struct{}, len(categories)+1)}
	for _, cat := range categories {
		c.Register(cat)
	}
	c.Register(model.CategoryOther)
	return c
}

// Register appends a category and reports whether it was new.
func (c *Catalog) Register(category model.Category) bool {
	if category == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[category]; ok {
		return false
	}
	c.index[category] = struct{}{}
	c.names = append(c.names, category)
	return true
}

// List returns a snapshot of the catalog in registration order.
func (c *Catalog) List() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Category, len(c.names))
	copy(out, c.names)
	return out
}

// Contains reports whether a category is known.
func (c *Catalog) Contains(category model.Category) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.index[category]
	return ok
}

// Len returns the number of known categories.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}
