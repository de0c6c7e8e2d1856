package http

import (
	"sync"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/presenter"
)

// deleteFlows keeps one two-step delete confirmation per browser session.
type deleteFlows struct {
	mu    sync.Mutex
	cache *cache.LRUCache[*presenter.DeleteFlow]
}

func newDeleteFlows(size int, ttl time.Duration) *deleteFlows {
	return &deleteFlows{cache: cache.NewLRUCache[*presenter.DeleteFlow](size, ttl)}
}

// get returns the flow of session key, creating it when absent.
func (d *deleteFlows) get(key string) *presenter.DeleteFlow {
	d.mu.Lock()
	defer d.mu.Unlock()

	if f, ok := d.cache.Get(key); ok {
		return f
	}
	f := &presenter.DeleteFlow{}
	d.cache.Set(key, f)
	return f
}

func (d *deleteFlows) drop(key string) {
	d.cache.Delete(key)
}
