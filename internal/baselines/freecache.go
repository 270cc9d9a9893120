package baselines

import (
	"sync/atomic"

	"github.com/coocood/freecache"
)

// mbfEstimator models the "Membership/Bytes Filter" baseline: freecache's
// slab-allocated, zero-GC map, which evicts silently with no per-entry
// callback. WSS here tracks admitted bytes minus confirmed overwrites;
// slab eviction under memory pressure is not individually observable, so
// this baseline's WSS is a one-sided (non-decreasing except on overwrite)
// approximation rather than an exact resident-set size.
type mbfEstimator struct {
	cache *freecache.Cache
	total atomic.Int64
}

// NewMBF builds a freecache-backed baseline with the given byte capacity.
func NewMBF(sizeBytes int) Estimator {
	return &mbfEstimator{cache: freecache.NewCache(sizeBytes)}
}

func (e *mbfEstimator) Put(key []byte, size uint64) {
	if old, err := e.cache.Get(key); err == nil {
		e.total.Add(-int64(len(old)))
	}
	placeholder := make([]byte, size)
	if err := e.cache.Set(key, placeholder, 0); err == nil {
		e.total.Add(int64(size))
	}
}

func (e *mbfEstimator) WSS() uint64 {
	v := e.total.Load()
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func (e *mbfEstimator) Name() string { return "mbf-freecache" }
