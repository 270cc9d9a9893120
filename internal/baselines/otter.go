package baselines

import (
	"sync/atomic"

	"github.com/maypok86/otter/v2"
)

// adaptiveEstimator models the "adaptive" baseline: otter's W-TinyLFU
// cache, which adapts its admission window size to the observed hit
// ratio rather than using a fixed clock-sweep policy.
type adaptiveEstimator struct {
	cache *otter.Cache[string, uint64]
	total atomic.Int64
}

// NewAdaptive builds an otter-backed baseline capped at capacity entries.
func NewAdaptive(capacity int) Estimator {
	e := &adaptiveEstimator{}
	b := otter.Must(&otter.Options[string, uint64]{
		MaximumSize: capacity,
		OnDeletion: func(evt otter.DeletionEvent[string, uint64]) {
			e.total.Add(-int64(evt.Value))
		},
	})
	e.cache = b
	return e
}

func (e *adaptiveEstimator) Put(key []byte, size uint64) {
	k := sizeKey(key)
	if old, ok := e.cache.GetIfPresent(k); ok {
		e.total.Add(-int64(old))
	}
	e.cache.Set(k, size)
	e.total.Add(int64(size))
}

func (e *adaptiveEstimator) WSS() uint64 {
	v := e.total.Load()
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func (e *adaptiveEstimator) Name() string { return "adaptive-otter" }
