package rules

import (
	"sync"

	"github.com/finwell/planmatch/internal/domain/plan"
)

// Loader fetches a user's rules from the store. The cache calls it on
// miss; only enabled rules matter but the loader may return all of
// them.
type Loader func(userID string) ([]plan.Rule, error)

// Cache keeps each user's enabled rules pre-sorted so batch evaluation
// does not re-sort per transaction. Invalidation is explicit: any rule
// create/update/delete must call Invalidate for the owning user.
// There is no TTL; a stale entry would miscategorize silently, so
// correctness wins over staleness tolerance.
type Cache struct {
	mu     sync.RWMutex
	load   Loader
	byUser map[string][]plan.Rule
}

// NewCache creates a rule cache backed by the given loader.
func NewCache(load Loader) *Cache {
	return &Cache{
		load:   load,
		byUser: make(map[string][]plan.Rule),
	}
}

// Rules returns the user's enabled rules in evaluation order, loading
// and sorting them on first use.
func (c *Cache) Rules(userID string) ([]plan.Rule, error) {
	c.mu.RLock()
	cached, ok := c.byUser[userID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	loaded, err := c.load(userID)
	if err != nil {
		return nil, err
	}
	enabled := make([]plan.Rule, 0, len(loaded))
	for _, r := range loaded {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	Sort(enabled)

	c.mu.Lock()
	c.byUser[userID] = enabled
	c.mu.Unlock()
	return enabled, nil
}

// Invalidate drops the cached rules for a user. The next Rules call
// reloads from the store, so the change is visible immediately.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.byUser, userID)
	c.mu.Unlock()
}

// Size returns the number of users currently cached.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byUser)
}
