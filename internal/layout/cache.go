package layout

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// DefaultCacheSize bounds the number of memoized layouts.
const DefaultCacheSize = 256

// Cache memoizes Compute by graph fingerprint and spacing. The UI
// re-renders on every keystroke while the graph itself changes only
// when the classifier answers.
type Cache struct {
	entries *lru.Cache[string, Result]
}

// NewCache creates a Cache holding at most size layouts.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, Result](size)
	if err != nil {
		return nil, fmt.Errorf("create layout cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Compute returns the cached layout for g, computing it on a miss. The
// caller owns the returned Result; changing it does not touch the cache.
func (c *Cache) Compute(g *blockgraph.Graph, sp Spacing) Result {
	key := fmt.Sprintf("%s|%g|%g|%g", g.Fingerprint(), sp.Horizontal, sp.Vertical, sp.CenterX)
	res, ok := c.entries.Get(key)
	if !ok {
		res = Compute(g, sp)
		c.entries.Add(key, res)
	}
	return res.Clone()
}

// Len returns the number of cached layouts.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached layout.
func (c *Cache) Purge() {
	c.entries.Purge()
}
