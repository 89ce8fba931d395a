package inmemory

import (
	"sync"
	"time"

	stablesdomain "stable-app-go/internal/domain/stables"
)

// StableCache remembers each user's stable for a bounded time.
type StableCache struct {
	mu    sync.RWMutex
	items map[string]stableItem
}

type stableItem struct {
	value     stablesdomain.Stable
	expiresAt time.Time
}

func NewStableCache() *StableCache {
	return &StableCache{
		items: make(map[string]stableItem),
	}
}

func (c *StableCache) GetByUserID(userID string) (*stablesdomain.Stable, bool) {
	now := time.Now()

	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[userID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := cloneStable(item.value)
	return &value, true
}

func (c *StableCache) SetByUserID(userID string, stable *stablesdomain.Stable, ttl time.Duration) {
	if stable == nil || ttl <= 0 {
		c.DeleteByUserID(userID)
		return
	}

	c.mu.Lock()
	c.items[userID] = stableItem{
		value:     cloneStable(*stable),
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *StableCache) DeleteByUserID(userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}

func (c *StableCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]stableItem)
	c.mu.Unlock()
}

func (c *StableCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
