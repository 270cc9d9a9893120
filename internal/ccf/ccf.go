// Package ccf implements the Clock-based Counting Cuckoo Filter: the core
// data structure of Cuki. It maps opaque keys to two candidate buckets in a
// buckettable.Table, stores a fingerprint plus a byte-size and an aging
// clock per slot, and performs cuckoo displacement under a bounded kick
// budget (spec §4.3).
package ccf

import (
	"math/bits"
	"sync/atomic"

	"github.com/cukiwss/cuki/internal/buckettable"
)

// PutOutcome reports how a Put call resolved, per spec §4.3's state machine.
type PutOutcome int

const (
	Inserted PutOutcome = iota
	Refreshed
	Displaced
	Dropped
)

// SizeEncoding mirrors cuki.SizeEncoding without importing the public
// package (which would create an import cycle).
type SizeEncoding int

const (
	SizeLinear SizeEncoding = iota
	SizeBucket
)

// Config collects the parameters ccf.New needs. The caller (cuki.New) is
// responsible for validating config invariants (spec §7); CCF trusts them.
type Config struct {
	TagsPerBucket  int
	TagBits        int
	SizeEncode     SizeEncoding
	SizeBits       int
	SizeBucketBits int
	ClockBits      int
	ScopeBits      int
	NumBuckets     uint64
	LockNumber     int
	MaxKicks       int
	OppoAging      bool
	Hasher         func([]byte) uint64
}

// CCF is the clock-based counting cuckoo filter.
type CCF struct {
	table      *buckettable.Table
	numBuckets uint64
	bucketMask uint64
	maxKicks   int
	sizeEncode SizeEncoding
	sizeShift  uint
	oppoAging  bool
	hasher     func([]byte) uint64

	runningWSS atomic.Int64
	kickSeed   atomic.Uint64 // xorshift state for victim selection, lock-free
}

// New builds a CCF over a freshly allocated table.
func New(cfg Config) *CCF {
	layout := buckettable.NewLayout(cfg.TagBits, cfg.SizeBits, cfg.ClockBits, cfg.ScopeBits)
	c := &CCF{
		table:      buckettable.New(cfg.NumBuckets, cfg.TagsPerBucket, layout, cfg.LockNumber),
		numBuckets: cfg.NumBuckets,
		bucketMask: cfg.NumBuckets - 1,
		maxKicks:   cfg.MaxKicks,
		sizeEncode: cfg.SizeEncode,
		sizeShift:  uint(cfg.SizeBucketBits),
		oppoAging:  cfg.OppoAging,
		hasher:     cfg.Hasher,
	}
	c.kickSeed.Store(0x9e3779b97f4a7c15)
	return c
}

// Table exposes the backing table. Not part of the public API surface; the
// window-driven aging controller reaches the table through SweepRange.
func (c *CCF) Table() *buckettable.Table { return c.table }

// encode converts a requested byte size into a slot's raw size field.
func (c *CCF) encode(size uint64) uint64 {
	maxSize := c.table.MaxSize()
	switch c.sizeEncode {
	case SizeBucket:
		q := size >> c.sizeShift
		if q > maxSize {
			q = maxSize
		}
		return q
	default: // SizeLinear
		if size > maxSize {
			return maxSize
		}
		return size
	}
}

// decode converts a slot's raw size field back into a byte count.
func (c *CCF) decode(raw uint64) uint64 {
	if c.sizeEncode == SizeBucket {
		if raw == 0 {
			return uint64(1) << c.sizeShift
		}
		return raw << c.sizeShift
	}
	return raw
}

// tagAndBuckets derives (tag, i1, i2) from a key per spec §4.3: low log2(N)
// bits of the hash give i1, the next TagBits give the raw tag (promoted to
// 1 if zero), and i2 = i1 XOR (H_mix(tag) mod N) with H_mix forced odd to
// guarantee alt(alt(i1,tag),tag) == i1 for power-of-two N.
func (c *CCF) tagAndBuckets(key []byte) (tag, i1, i2 uint64) {
	h := c.hasher(key)
	i1 = h & c.bucketMask

	tagMask := (uint64(1) << uint(c.table.Layout().TagBits)) - 1
	tag = (h >> uint(bits.TrailingZeros64(c.numBuckets))) & tagMask
	if tag == 0 {
		tag = 1
	}

	i2 = c.altBucket(i1, tag)
	return tag, i1, i2
}

// altBucket computes the cuckoo alternate of bucket relative to tag.
func (c *CCF) altBucket(bucket, tag uint64) uint64 {
	return bucket ^ (hMix(tag) & c.bucketMask)
}

// hMix is a deterministic integer mix, forced odd so that XOR-based
// reciprocity (alt(alt(x))==x) holds for the power-of-two table size
// (spec §9's resolution of the H_mix ambiguity).
func hMix(tag uint64) uint64 {
	x := tag * 0x9e3779b97f4a7c15
	x ^= x >> 32
	x |= 1
	return x
}

// DropInfo describes the entry discarded when MAX_KICKS is exhausted.
type DropInfo struct {
	Size  uint64
	Scope uint64
}

// Put inserts or refreshes key with size, displacing entries under cuckoo
// pressure and dropping the last evicted entry if MAX_KICKS is exhausted
// (spec §4.3, §7's CapacityExhausted recovery path).
func (c *CCF) Put(key []byte, size uint64) (PutOutcome, DropInfo) {
	return c.PutScoped(key, size, 0)
}

// PutScoped is Put with an explicit scope tag, carried alongside the entry
// through refreshes and cuckoo displacement (spec §4.3's per-scope
// accounting extension).
func (c *CCF) PutScoped(key []byte, size, scope uint64) (PutOutcome, DropInfo) {
	tag, i1, i2 := c.tagAndBuckets(key)
	encSize := c.encode(size)

	if c.oppoAging {
		c.ageTouch(i1)
		c.ageTouch(i2)
	}

	if outcome, ok := c.tryBucket(i1, tag, encSize, scope); ok {
		return outcome, DropInfo{}
	}
	if outcome, ok := c.tryBucket(i2, tag, encSize, scope); ok {
		return outcome, DropInfo{}
	}

	return c.cuckooInsert(tag, encSize, scope, i1)
}

// tryBucket attempts a refresh-or-insert within a single bucket under its
// stripe lock. ok is false if the bucket has neither a matching tag nor a
// free slot.
func (c *CCF) tryBucket(bucket, tag, encSize, scope uint64) (PutOutcome, bool) {
	c.table.PrefetchBucket(bucket)
	unlock := c.table.Lock(bucket)
	defer unlock()

	if c.oppoAging {
		c.freeDyingSlotsLocked(bucket)
	}

	maxClock := c.table.MaxClock()
	free := -1
	for s := 0; s < c.table.TagsPerBucket(); s++ {
		slot := c.table.ReadSlot(bucket, s)
		if slot.Tag == tag {
			newSize := maxUint64(slot.Size, encSize)
			if newSize != slot.Size {
				c.runningWSS.Add(int64(c.decode(newSize)) - int64(c.decode(slot.Size)))
			}
			c.table.WriteSlot(bucket, s, buckettable.Slot{Tag: tag, Size: newSize, Clock: maxClock, Scope: slot.Scope})
			return Refreshed, true
		}
		if slot.Empty() && free == -1 {
			free = s
		}
	}

	if free >= 0 {
		c.table.WriteSlot(bucket, free, buckettable.Slot{Tag: tag, Size: encSize, Clock: maxClock, Scope: scope})
		c.runningWSS.Add(int64(c.decode(encSize)))
		return Inserted, true
	}
	return 0, false
}

// freeDyingSlotsLocked implements opportunistic aging's pre-kick check:
// any slot whose clock is already 1 is treated as empty before a victim is
// chosen, avoiding an unnecessary displacement (spec §4.4). Caller must
// hold bucket's lock.
func (c *CCF) freeDyingSlotsLocked(bucket uint64) {
	for s := 0; s < c.table.TagsPerBucket(); s++ {
		slot := c.table.ReadSlot(bucket, s)
		if !slot.Empty() && slot.Clock == 1 {
			c.runningWSS.Add(-int64(c.decode(slot.Size)))
			c.table.WriteTag(bucket, s, 0)
		}
	}
}

// ageTouch decrements every occupied slot's clock in bucket by one,
// saturating at 0 and freeing slots that reach it (spec §4.4's "on every
// put, the two candidate buckets' clocks are decremented").
func (c *CCF) ageTouch(bucket uint64) {
	unlock := c.table.Lock(bucket)
	defer unlock()
	for s := 0; s < c.table.TagsPerBucket(); s++ {
		slot := c.table.ReadSlot(bucket, s)
		if slot.Empty() || slot.Clock == 0 {
			continue
		}
		if slot.Clock == 1 {
			c.runningWSS.Add(-int64(c.decode(slot.Size)))
			c.table.WriteTag(bucket, s, 0)
			continue
		}
		c.table.WriteClock(bucket, s, slot.Clock-1)
	}
}

// cuckooInsert performs the bounded random-walk displacement loop.
func (c *CCF) cuckooInsert(tag, encSize, scope, startBucket uint64) (PutOutcome, DropInfo) {
	maxClock := c.table.MaxClock()
	carryTag, carrySize, carryClock, carryScope := tag, encSize, maxClock, scope
	bucket := startBucket

	for kick := 0; kick < c.maxKicks; kick++ {
		if placed := c.tryPlaceInBucket(bucket, carryTag, carrySize, carryClock, carryScope); placed {
			if kick == 0 {
				c.runningWSS.Add(int64(c.decode(encSize)))
			}
			return Displaced, DropInfo{}
		}

		victimBucket := bucket
		// LockTwo needs the candidate alt bucket up front, but this is only
		// used to acquire the lock pair; the next iteration's bucket is
		// recomputed below from the evicted victim's own tag.
		lockAlt := c.altBucket(victimBucket, carryTag)
		unlock := c.table.LockTwo(victimBucket, lockAlt)
		j := c.randomSlot()
		victim := c.table.ReadSlot(victimBucket, j)
		c.table.WriteSlot(victimBucket, j, buckettable.Slot{Tag: carryTag, Size: carrySize, Clock: carryClock, Scope: carryScope})
		unlock()

		if kick == 0 {
			c.runningWSS.Add(int64(c.decode(encSize)))
		}

		if victim.Empty() {
			return Displaced, DropInfo{}
		}

		carryTag, carrySize, carryClock, carryScope = victim.Tag, victim.Size, victim.Clock, victim.Scope
		bucket = c.altBucket(victimBucket, carryTag)
	}

	// MAX_KICKS exhausted: drop the last carried entry (spec §7).
	dropped := c.decode(carrySize)
	c.runningWSS.Add(-int64(dropped))
	return Dropped, DropInfo{Size: dropped, Scope: carryScope}
}

// tryPlaceInBucket writes (tag,size,clock,scope) into bucket's first free
// slot, if any, under the bucket's own lock.
func (c *CCF) tryPlaceInBucket(bucket, tag, size, clock, scope uint64) bool {
	unlock := c.table.Lock(bucket)
	defer unlock()
	for s := 0; s < c.table.TagsPerBucket(); s++ {
		if c.table.ReadSlot(bucket, s).Empty() {
			c.table.WriteSlot(bucket, s, buckettable.Slot{Tag: tag, Size: size, Clock: clock, Scope: scope})
			return true
		}
	}
	return false
}

// randomSlot picks a pseudo-random slot index using a lock-free xorshift
// generator (spec §9: the evicted value is carried on the stack, never in
// shared state, so a racy shared RNG only affects which slot is picked,
// never correctness).
func (c *CCF) randomSlot() int {
	for {
		old := c.kickSeed.Load()
		x := old
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		if c.kickSeed.CompareAndSwap(old, x) {
			n := c.table.TagsPerBucket()
			return int(x % uint64(n))
		}
	}
}

// SizeOf returns the decoded size of key if resident, spec §4.3.
func (c *CCF) SizeOf(key []byte) (uint64, bool) {
	tag, i1, i2 := c.tagAndBuckets(key)

	if size, ok := c.sizeInBucket(i1, tag); ok {
		return size, true
	}
	if size, ok := c.sizeInBucket(i2, tag); ok {
		return size, true
	}
	return 0, false
}

func (c *CCF) sizeInBucket(bucket, tag uint64) (uint64, bool) {
	c.table.PrefetchBucket(bucket)
	unlock := c.table.Lock(bucket)
	defer unlock()
	for s := 0; s < c.table.TagsPerBucket(); s++ {
		slot := c.table.ReadSlot(bucket, s)
		if slot.Tag == tag {
			return c.decode(slot.Size), true
		}
	}
	return 0, false
}

// WSS returns the running working-set-size estimate.
func (c *CCF) WSS() uint64 {
	v := c.runningWSS.Load()
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// Reconcile recomputes the running sum from scratch by scanning every
// slot, bounding drift accumulated from concurrent over-counting (spec
// §4.3, §5). It does not hold any single global lock across the whole
// scan; it is a best-effort correction pass.
func (c *CCF) Reconcile() uint64 {
	var total uint64
	for b := uint64(0); b < c.numBuckets; b++ {
		unlock := c.table.Lock(b)
		for s := 0; s < c.table.TagsPerBucket(); s++ {
			slot := c.table.ReadSlot(b, s)
			if !slot.Empty() {
				total += c.decode(slot.Size)
			}
		}
		unlock()
	}
	c.runningWSS.Store(int64(total))
	return total
}

// SweepRange decrements the clock of every occupied slot in count buckets
// starting at startBucket (wrapping modulo N), freeing slots that reach 0.
// Used by the window-driven aging controller to amortize a full-table pass
// across many Put calls (spec §4.4). Returns the number of slots freed and
// their total decoded size.
func (c *CCF) SweepRange(startBucket, count uint64) (freed int, freedBytes uint64) {
	for i := uint64(0); i < count; i++ {
		bucket := (startBucket + i) & c.bucketMask
		unlock := c.table.Lock(bucket)
		for s := 0; s < c.table.TagsPerBucket(); s++ {
			slot := c.table.ReadSlot(bucket, s)
			if slot.Empty() {
				continue
			}
			if slot.Clock <= 1 {
				freedBytes += c.decode(slot.Size)
				freed++
				c.table.WriteTag(bucket, s, 0)
				continue
			}
			c.table.WriteClock(bucket, s, slot.Clock-1)
		}
		unlock()
	}
	if freedBytes > 0 {
		c.runningWSS.Add(-int64(freedBytes))
	}
	return freed, freedBytes
}

// NumBuckets returns N.
func (c *CCF) NumBuckets() uint64 { return c.numBuckets }

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
