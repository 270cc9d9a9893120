package baselines

import (
	"sync/atomic"

	"github.com/Yiling-J/theine-go"
)

// tinyLFUEstimator is a benchmark-only W-TinyLFU baseline (theine), kept
// alongside the production-grade adapters purely as a reference point in
// baselines_bench_test.go, not wired into cukictl's default comparison set.
type tinyLFUEstimator struct {
	cache *theine.Cache[string, uint64]
	total atomic.Int64
}

// NewTinyLFUBenchmark builds a theine-backed baseline capped at a total
// cost of capacity, where each entry costs its size in bytes, used only for
// benchmarking against the CCF.
func NewTinyLFUBenchmark(capacity int64) Estimator {
	e := &tinyLFUEstimator{}
	c, err := theine.NewBuilder[string, uint64](capacity).
		RemovalListener(func(key string, value uint64, reason theine.RemoveReason) {
			e.total.Add(-int64(value))
		}).
		Build()
	if err != nil {
		panic(err)
	}
	e.cache = c
	return e
}

func (e *tinyLFUEstimator) Put(key []byte, size uint64) {
	k := sizeKey(key)
	if old, ok := e.cache.Get(k); ok {
		e.total.Add(-int64(old))
	}
	if e.cache.Set(k, size, int64(size)) {
		e.total.Add(int64(size))
	}
}

func (e *tinyLFUEstimator) WSS() uint64 {
	v := e.total.Load()
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func (e *tinyLFUEstimator) Name() string { return "tinylfu-theine-benchmark" }
