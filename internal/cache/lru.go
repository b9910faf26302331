package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LocalLRU implements LRU over hashicorp/golang-lru/v2, the process-local
// tier consulted when the scoped cache misses on a lookup.
type LocalLRU[V any] struct {
	cache *lru.Cache[string, V]
}

// NewLocalLRU builds a fixed-capacity in-process cache. size<=0 falls back
// to a sane default rather than erroring, since this tier is an
// optimization, not a correctness requirement.
func NewLocalLRU[V any](size int) *LocalLRU[V] {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[string, V](size)
	if err != nil {
		// Only returns an error for size<=0, already guarded above.
		panic(err)
	}
	return &LocalLRU[V]{cache: c}
}

func (l *LocalLRU[V]) Get(key string) (V, bool) {
	return l.cache.Get(key)
}

func (l *LocalLRU[V]) Add(key string, value V) {
	l.cache.Add(key, value)
}
