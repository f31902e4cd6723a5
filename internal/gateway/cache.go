package gateway

import "sync"

// cache memoizes fetch results for the duration of one scan. Repository data
// is fetched once per scan and treated as immutable afterwards.
type cache struct {
	data sync.Map
}

func newCache() *cache {
	return &cache{}
}

func (c *cache) Get(key string) (any, bool) {
	return c.data.Load(key)
}

func (c *cache) Set(key string, value any) {
	c.data.Store(key, value)
}
