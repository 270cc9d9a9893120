package irr

import (
	"sync"
	"testing"
)

func TestLastSeenIndexFirstTouchHasNoExisting(t *testing.T) {
	idx := NewLastSeenIndex(16)
	_, existed := idx.Touch(42, 100)
	if existed {
		t.Fatal("first touch of a key must report existed=false")
	}
}

func TestLastSeenIndexSecondTouchReturnsPrevious(t *testing.T) {
	idx := NewLastSeenIndex(16)
	idx.Touch(42, 100)
	prev, existed := idx.Touch(42, 150)
	if !existed || prev != 100 {
		t.Fatalf("Touch = (%d,%v), want (100,true)", prev, existed)
	}
}

func TestLastSeenIndexLen(t *testing.T) {
	idx := NewLastSeenIndex(4)
	for i := uint64(0); i < 10; i++ {
		idx.Touch(i, i)
	}
	if got := idx.Len(); got != 10 {
		t.Fatalf("Len() = %d, want 10", got)
	}
}

func TestLastSeenIndexConcurrentTouch(t *testing.T) {
	idx := NewLastSeenIndex(8)
	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(worker uint64) {
			defer wg.Done()
			for i := uint64(0); i < 200; i++ {
				idx.Touch(worker*1000+i, i)
			}
		}(uint64(w))
	}
	wg.Wait()
	if got := idx.Len(); got != 16*200 {
		t.Fatalf("Len() = %d, want %d", got, 16*200)
	}
}

func TestHistogramBucketsByPowerOfTwo(t *testing.T) {
	h := NewHistogram()
	h.Observe(0)
	h.Observe(1)
	h.Observe(2)
	h.Observe(3)
	h.Observe(1000)

	counts := h.Counts()
	if counts[0] != 1 {
		t.Fatalf("bucket 0 (irr=0) = %d, want 1", counts[0])
	}
	if counts[1] != 1 { // irr=1 -> bits.Len64(1)=1
		t.Fatalf("bucket 1 (irr=1) = %d, want 1", counts[1])
	}
	if counts[2] != 2 { // irr=2,3 -> bits.Len64=2
		t.Fatalf("bucket 2 (irr=2,3) = %d, want 2", counts[2])
	}
	total := int64(0)
	for _, c := range counts {
		total += c
	}
	if total != 5 {
		t.Fatalf("total observations = %d, want 5", total)
	}
}

func TestHistogramQuantileMonotonic(t *testing.T) {
	h := NewHistogram()
	for i := uint64(1); i <= 100; i++ {
		h.Observe(i)
	}
	q50 := h.Quantile(0.5)
	q90 := h.Quantile(0.9)
	if q90 < q50 {
		t.Fatalf("Quantile(0.9)=%d < Quantile(0.5)=%d", q90, q50)
	}
}

func TestHistogramQuantileEmpty(t *testing.T) {
	h := NewHistogram()
	if got := h.Quantile(0.5); got != 0 {
		t.Fatalf("Quantile on empty histogram = %d, want 0", got)
	}
}
