package stockdata

import (
	"sync"
	"time"
)

// Key identifies one cached fetch: exact normalized symbol and date range.
type Key struct {
	Symbol string
	Start  string // YYYY-MM-DD
	End    string
}

func (k Key) flight() string { return k.Symbol + "|" + k.Start + "|" + k.End }

// entry stores one fetch result with expiry. A nil result records that the
// range is known to have no data.
type entry struct {
	expiresAt time.Time
	res       *Result
}

// Cache stores fetch results per exact key for a TTL. Entries are immutable
// once stored and replaced wholesale after expiry; expiry is checked lazily
// at lookup time, there is no sweeper.
type Cache struct {
	TTL      time.Duration
	MaxItems int
	// Now overrides the clock, for tests.
	Now func() time.Time

	mu    sync.RWMutex
	items map[Key]entry
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Cache) Get(k Key) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[k]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.res, true
}

func (c *Cache) Put(k Key, r *Result) {
	if c.TTL <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[Key]entry)
	}
	c.items[k] = entry{expiresAt: c.now().Add(c.TTL), res: r}

	if c.MaxItems <= 0 || len(c.items) <= c.MaxItems {
		return
	}
	// best-effort cap: drop expired entries first, then arbitrary ones
	now := c.now()
	for key, e := range c.items {
		if key == k {
			continue
		}
		if now.After(e.expiresAt) {
			delete(c.items, key)
		}
		if len(c.items) <= c.MaxItems {
			return
		}
	}
	for key := range c.items {
		if len(c.items) <= c.MaxItems {
			return
		}
		if key == k {
			continue
		}
		delete(c.items, key)
	}
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
