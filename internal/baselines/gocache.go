package baselines

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// naiveEstimator models the "naive" baseline: an unbounded map with
// passive TTL expiry and no admission policy at all, the simplest
// possible stand-in for "just remember everything you've seen recently."
type naiveEstimator struct {
	cache *gocache.Cache
	total atomic.Int64
}

// NewNaive builds a go-cache-backed baseline expiring entries after ttl.
func NewNaive(ttl time.Duration) Estimator {
	e := &naiveEstimator{cache: gocache.New(ttl, ttl/2)}
	e.cache.OnEvicted(func(key string, value interface{}) {
		if size, ok := value.(uint64); ok {
			e.total.Add(-int64(size))
		}
	})
	return e
}

func (e *naiveEstimator) Put(key []byte, size uint64) {
	k := sizeKey(key)
	if old, ok := e.cache.Get(k); ok {
		if oldSize, ok := old.(uint64); ok {
			e.total.Add(-int64(oldSize))
		}
	}
	e.cache.Set(k, size, gocache.DefaultExpiration)
	e.total.Add(int64(size))
}

func (e *naiveEstimator) WSS() uint64 {
	v := e.total.Load()
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func (e *naiveEstimator) Name() string { return "naive-gocache" }
