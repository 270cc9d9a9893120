package baselines

import (
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
)

// swampEstimator models the "Sampled Window Admission Policy" baseline:
// ristretto's TinyLFU-admission, sampled-LFU-eviction cache, cost-weighted
// by the reference size itself so MaxCost behaves like a byte budget.
type swampEstimator struct {
	cache *ristretto.Cache[string, uint64]
	total atomic.Int64
}

// NewSWAMP builds a ristretto-backed baseline with maxCostBytes as its
// cost budget (MaxCost), admitting/evicting by TinyLFU+sampled-LFU.
func NewSWAMP(maxCostBytes int64) Estimator {
	e := &swampEstimator{}
	cfg := &ristretto.Config[string, uint64]{
		NumCounters: maxCostBytes / 8 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
		OnEvict: func(item *ristretto.Item[uint64]) {
			e.total.Add(-int64(item.Value))
		},
		OnReject: func(item *ristretto.Item[uint64]) {
			e.total.Add(-int64(item.Value))
		},
	}
	c, err := ristretto.NewCache(cfg)
	if err != nil {
		panic(err)
	}
	e.cache = c
	return e
}

func (e *swampEstimator) Put(key []byte, size uint64) {
	k := sizeKey(key)
	if old, ok := e.cache.Get(k); ok {
		e.total.Add(-int64(old))
	}
	if e.cache.Set(k, size, int64(size)) {
		e.total.Add(int64(size))
	}
	e.cache.Wait()
}

func (e *swampEstimator) WSS() uint64 {
	v := e.total.Load()
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func (e *swampEstimator) Name() string { return "swamp-ristretto" }
