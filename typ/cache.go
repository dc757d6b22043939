package typ

import "github.com/viant/typecodec/internal/lru"

// Cache memoizes parsed type strings. Instances are process scoped and are
// injected into builders, so tests can use isolated caches.
type Cache struct {
	types *lru.Cache[string, *Type]
}

// NewCache creates a type cache holding up to capacity entries.
func NewCache(capacity int) *Cache {
	return &Cache{types: lru.New[string, *Type](capacity)}
}

func (c *Cache) lookup(key string, parse func() (*Type, error)) (*Type, error) {
	return c.types.GetOrCreate(key, parse)
}

// Len returns number of memoized types.
func (c *Cache) Len() int { return c.types.Len() }
