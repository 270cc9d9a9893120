// Package irr tracks inter-reference recency: for each observed key it
// remembers the reference index of its previous occurrence, and buckets
// the resulting gaps into a log-scale histogram (spec §4.5).
package irr

import "sync"

const cacheLineSize = 64

// lastSeenShard is one stripe of the last-seen index, padded to its own
// cache line to avoid false sharing between concurrently touched shards
// (mirrors the teacher's sharded store shard layout).
type lastSeenShard struct {
	mu sync.Mutex
	m  map[uint64]uint64
	_  [cacheLineSize - 16]byte
}

// LastSeenIndex maps a key's hash to the reference index at which it was
// last observed. It is a stripped-down version of a general sharded map:
// no TTL, no value type beyond the index itself.
type LastSeenIndex struct {
	shards    []*lastSeenShard
	shardMask uint64
}

// NewLastSeenIndex creates an index with shardCount shards, rounded up to
// the next power of two.
func NewLastSeenIndex(shardCount int) *LastSeenIndex {
	if shardCount <= 0 {
		shardCount = 256
	}
	shardCount = nextPowerOf2(shardCount)

	idx := &LastSeenIndex{
		shards:    make([]*lastSeenShard, shardCount),
		shardMask: uint64(shardCount - 1),
	}
	for i := range idx.shards {
		idx.shards[i] = &lastSeenShard{m: make(map[uint64]uint64)}
	}
	return idx
}

func nextPowerOf2(n int) int {
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

func (idx *LastSeenIndex) shardFor(keyHash uint64) *lastSeenShard {
	return idx.shards[keyHash&idx.shardMask]
}

// Touch records refIndex as the new last-seen position for keyHash and
// returns the previous position and whether one existed. This is the
// index's only mutating operation: callers derive the IRR as
// refIndex-previous.
func (idx *LastSeenIndex) Touch(keyHash, refIndex uint64) (previous uint64, existed bool) {
	sh := idx.shardFor(keyHash)
	sh.mu.Lock()
	previous, existed = sh.m[keyHash]
	sh.m[keyHash] = refIndex
	sh.mu.Unlock()
	return previous, existed
}

// Len returns the number of distinct keys currently tracked.
func (idx *LastSeenIndex) Len() int {
	n := 0
	for _, sh := range idx.shards {
		sh.mu.Lock()
		n += len(sh.m)
		sh.mu.Unlock()
	}
	return n
}
