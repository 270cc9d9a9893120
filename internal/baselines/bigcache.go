package baselines

import (
	"context"
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/allegro/bigcache/v3"
)

// bmcEstimator models the "Bounded Membership Cache" baseline: bigcache's
// shard-striped, TTL-evicted byte arena, used here purely for its
// admission/eviction behavior rather than its value storage.
type bmcEstimator struct {
	cache *bigcache.BigCache
	total atomic.Int64
}

// NewBMC builds a bigcache-backed baseline that expires entries after ttl.
func NewBMC(ttl time.Duration) Estimator {
	e := &bmcEstimator{}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.OnRemoveWithReason = func(key string, entry []byte, reason bigcache.RemoveReason) {
		if len(entry) == 8 {
			e.total.Add(-int64(binary.LittleEndian.Uint64(entry)))
		}
	}
	c, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	e.cache = c
	return e
}

func (e *bmcEstimator) Put(key []byte, size uint64) {
	k := sizeKey(key)
	if old, err := e.cache.Get(k); err == nil && len(old) == 8 {
		e.total.Add(-int64(binary.LittleEndian.Uint64(old)))
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, size)
	if err := e.cache.Set(k, buf); err == nil {
		e.total.Add(int64(size))
	}
}

func (e *bmcEstimator) WSS() uint64 {
	v := e.total.Load()
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func (e *bmcEstimator) Name() string { return "bmc-bigcache" }
