package baselines

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ssEstimator models the "Stack-Size" baseline: a fixed-capacity exact LRU
// that reports the summed size of its currently resident entries. Unlike
// the CCF, capacity is a hard cap measured in entry count, not bytes.
type ssEstimator struct {
	mu    sync.Mutex
	cache *lru.Cache[string, uint64]
	total uint64
}

// NewSS builds the LRU-backed WSS baseline with room for capacity entries.
// Eviction is handled by the library; the onEvict callback keeps the
// running total in sync with what is actually still resident.
func NewSS(capacity int) Estimator {
	e := &ssEstimator{}
	c, err := lru.NewWithEvict[string, uint64](capacity, e.onEvict)
	if err != nil {
		panic(err)
	}
	e.cache = c
	return e
}

func (e *ssEstimator) onEvict(key string, size uint64) {
	e.total -= size
}

func (e *ssEstimator) Put(key []byte, size uint64) {
	k := sizeKey(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	if old, ok := e.cache.Get(k); ok {
		e.total -= old
	}
	e.cache.Add(k, size)
	e.total += size
}

func (e *ssEstimator) WSS() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

func (e *ssEstimator) Name() string { return "ss-lru" }
