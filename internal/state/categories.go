package state

import (
	"fmt"
	"sync"

	"github.com/RachelRYuan/Blogen/internal/blogen"
)

// CategoryStore caches one page of categories in server order.
type CategoryStore struct {
	mu         sync.RWMutex
	categories []blogen.Category
	pageInfo   *blogen.PageInfo
}

// Set replaces the cached list.
func (c *CategoryStore) Set(categories []blogen.Category, info *blogen.PageInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = append([]blogen.Category(nil), categories...)
	if info != nil {
		dup := *info
		c.pageInfo = &dup
	} else {
		c.pageInfo = nil
	}
}

// Append adds a newly created category at the end.
func (c *CategoryStore) Append(cat blogen.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = append(c.categories, cat)
}

// ReplaceByID swaps the cached category with the same id.
func (c *CategoryStore) ReplaceByID(cat blogen.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.categories {
		if c.categories[i].ID == cat.ID {
			c.categories[i] = cat
			return nil
		}
	}
	return fmt.Errorf("replace category %d: %w", cat.ID, ErrNotFound)
}

// Categories returns a copy of the cached list.
func (c *CategoryStore) Categories() []blogen.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]blogen.Category(nil), c.categories...)
}

// PageInfo returns the page info of the last list fetch, if the server sent one.
func (c *CategoryStore) PageInfo() (blogen.PageInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.pageInfo == nil {
		return blogen.PageInfo{}, false
	}
	return *c.pageInfo, true
}

// Find looks up a cached category by id.
func (c *CategoryStore) Find(id int64) (blogen.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return blogen.Category{}, false
}
