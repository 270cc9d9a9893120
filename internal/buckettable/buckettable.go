// Package buckettable exposes typed slot reads/updates over a bitvector.BitVector,
// plus per-bucket mutual exclusion via a stripe of mutexes (spec §4.2).
package buckettable

import (
	"sync"

	"github.com/cukiwss/cuki/internal/bitvector"
	"github.com/cukiwss/cuki/internal/prefetch"
)

const cacheLineSize = 64

// stripe is one lock in the LOCK_NUMBER stripe, padded to its own cache
// line to avoid false sharing between adjacent stripes under contention
// (mirrors the shard padding in the teacher's sharded store).
type stripe struct {
	mu sync.Mutex
	_  [cacheLineSize - 8]byte
}

// Table is the bucketed, fixed-width-slot store backing the CCF.
type Table struct {
	bv            *bitvector.BitVector
	layout        Layout
	tagsPerBucket int
	numBuckets    uint64
	locks         []stripe
	lockMask      uint64
}

// New creates a Table with numBuckets buckets of tagsPerBucket slots each,
// laid out per layout, striped across lockNumber mutexes. numBuckets and
// lockNumber must both be powers of two; callers validate this (spec §7's
// ConfigInvalid is raised one layer up, in the facade's New).
func New(numBuckets uint64, tagsPerBucket int, layout Layout, lockNumber int) *Table {
	totalSlots := numBuckets * uint64(tagsPerBucket)
	return &Table{
		bv:            bitvector.New(totalSlots * uint64(layout.SlotBits())),
		layout:        layout,
		tagsPerBucket: tagsPerBucket,
		numBuckets:    numBuckets,
		locks:         make([]stripe, lockNumber),
		lockMask:      uint64(lockNumber - 1),
	}
}

// NumBuckets returns N.
func (t *Table) NumBuckets() uint64 { return t.numBuckets }

// TagsPerBucket returns B.
func (t *Table) TagsPerBucket() int { return t.tagsPerBucket }

// Layout returns the slot field layout.
func (t *Table) Layout() Layout { return t.layout }

func (t *Table) stripeIndex(bucket uint64) uint64 { return bucket & t.lockMask }

// Lock acquires the stripe guarding bucket and returns an unlock function.
func (t *Table) Lock(bucket uint64) func() {
	s := &t.locks[t.stripeIndex(bucket)]
	s.mu.Lock()
	return s.mu.Unlock
}

// LockTwo acquires the stripes guarding b1 and b2 in ascending stripe-index
// order, so that any interleaving of two-bucket operations (cuckoo
// displacement) is deadlock-free (spec §5). If both buckets map to the same
// stripe, only one acquisition is made.
func (t *Table) LockTwo(b1, b2 uint64) func() {
	s1 := t.stripeIndex(b1)
	s2 := t.stripeIndex(b2)

	if s1 == s2 {
		t.locks[s1].mu.Lock()
		return t.locks[s1].mu.Unlock
	}
	lo, hi := s1, s2
	if lo > hi {
		lo, hi = hi, lo
	}
	t.locks[lo].mu.Lock()
	t.locks[hi].mu.Lock()
	return func() {
		t.locks[hi].mu.Unlock()
		t.locks[lo].mu.Unlock()
	}
}

func (t *Table) slotOffset(bucket uint64, slot int) uint64 {
	return (bucket*uint64(t.tagsPerBucket) + uint64(slot)) * uint64(t.layout.SlotBits())
}

// PrefetchBucket hints the runtime to bring a bucket's backing words into
// cache ahead of a read, the way the sharded store prefetches a shard's map
// header before acquiring its lock.
func (t *Table) PrefetchBucket(bucket uint64) {
	wordIdx := t.slotOffset(bucket, 0) / 64
	words := t.bv.RawWords()
	if wordIdx < uint64(len(words)) {
		prefetch.PrefetchSlice(words[wordIdx:])
	}
}

// ReadSlot returns the decoded slot at (bucket, slot).
func (t *Table) ReadSlot(bucket uint64, slot int) Slot {
	off := t.slotOffset(bucket, slot)
	l := t.layout
	s := Slot{Tag: t.bv.Get(off+uint64(l.tagOff), l.TagBits)}
	s.Size = t.bv.Get(off+uint64(l.sizeOff), l.SizeBits)
	s.Clock = t.bv.Get(off+uint64(l.clockOff), l.ClockBits)
	if l.ScopeBits > 0 {
		s.Scope = t.bv.Get(off+uint64(l.scopeOff), l.ScopeBits)
	}
	return s
}

// WriteSlot writes every field of a slot.
func (t *Table) WriteSlot(bucket uint64, slot int, s Slot) {
	off := t.slotOffset(bucket, slot)
	l := t.layout
	t.bv.Set(off+uint64(l.tagOff), l.TagBits, s.Tag)
	t.bv.Set(off+uint64(l.sizeOff), l.SizeBits, s.Size)
	t.bv.Set(off+uint64(l.clockOff), l.ClockBits, s.Clock)
	if l.ScopeBits > 0 {
		t.bv.Set(off+uint64(l.scopeOff), l.ScopeBits, s.Scope)
	}
}

// ReadTag reads just the tag field, the hot path for a cuckoo probe.
func (t *Table) ReadTag(bucket uint64, slot int) uint64 {
	off := t.slotOffset(bucket, slot)
	return t.bv.Get(off+uint64(t.layout.tagOff), t.layout.TagBits)
}

// WriteTag writes just the tag field. Used to clear a slot (tag=0) during
// aging without disturbing fields the caller has already zeroed logically.
func (t *Table) WriteTag(bucket uint64, slot int, tag uint64) {
	off := t.slotOffset(bucket, slot)
	t.bv.Set(off+uint64(t.layout.tagOff), t.layout.TagBits, tag)
}

// ReadSize reads the size field.
func (t *Table) ReadSize(bucket uint64, slot int) uint64 {
	off := t.slotOffset(bucket, slot)
	return t.bv.Get(off+uint64(t.layout.sizeOff), t.layout.SizeBits)
}

// WriteSize writes the size field.
func (t *Table) WriteSize(bucket uint64, slot int, size uint64) {
	off := t.slotOffset(bucket, slot)
	t.bv.Set(off+uint64(t.layout.sizeOff), t.layout.SizeBits, size)
}

// ReadClock reads the clock field.
func (t *Table) ReadClock(bucket uint64, slot int) uint64 {
	off := t.slotOffset(bucket, slot)
	return t.bv.Get(off+uint64(t.layout.clockOff), t.layout.ClockBits)
}

// WriteClock writes the clock field.
func (t *Table) WriteClock(bucket uint64, slot int, clock uint64) {
	off := t.slotOffset(bucket, slot)
	t.bv.Set(off+uint64(t.layout.clockOff), t.layout.ClockBits, clock)
}

// MaxClock returns the saturation value of the clock field (2^ClockBits - 1).
func (t *Table) MaxClock() uint64 {
	return (uint64(1) << uint(t.layout.ClockBits)) - 1
}

// MaxSize returns the saturation value of the size field (2^SizeBits - 1).
func (t *Table) MaxSize() uint64 {
	return (uint64(1) << uint(t.layout.SizeBits)) - 1
}
