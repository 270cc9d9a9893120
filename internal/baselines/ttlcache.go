package baselines

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// windowedEstimator models the "windowed recency" baseline: a pure
// TTL+capacity cache with no frequency weighting, standing in for a naive
// sliding-window resident-set estimate.
type windowedEstimator struct {
	cache *ttlcache.Cache[string, uint64]
	total atomic.Int64
}

// NewWindowedRecency builds a ttlcache-backed baseline holding up to
// capacity entries for ttl since last touch.
func NewWindowedRecency(capacity uint64, ttl time.Duration) Estimator {
	e := &windowedEstimator{}
	c := ttlcache.New[string, uint64](
		ttlcache.WithTTL[string, uint64](ttl),
		ttlcache.WithCapacity[string, uint64](capacity),
	)
	c.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, uint64]) {
		e.total.Add(-int64(item.Value()))
	})
	go c.Start()
	e.cache = c
	return e
}

func (e *windowedEstimator) Put(key []byte, size uint64) {
	k := sizeKey(key)
	if item := e.cache.Get(k); item != nil {
		e.total.Add(-int64(item.Value()))
	}
	e.cache.Set(k, size, ttlcache.DefaultTTL)
	e.total.Add(int64(size))
}

func (e *windowedEstimator) WSS() uint64 {
	v := e.total.Load()
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func (e *windowedEstimator) Name() string { return "windowed-ttlcache" }
