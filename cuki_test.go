package cuki

import (
	"fmt"
	"sync"
	"testing"
)

func TestFreshInsert(t *testing.T) {
	e, err := New(
		WithTagBits(8), WithTagsPerBucket(4), WithNumBuckets(16),
		WithClockBits(2), WithSizeBits(4), WithSizeEncoding(SizeLinear),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Put([]byte("a"), 5)
	e.Put([]byte("b"), 3)
	if got := e.WSS(); got != 8 {
		t.Fatalf("WSS() = %d, want 8", got)
	}
}

func TestRefreshTakesMaxUnderLinear(t *testing.T) {
	e, err := New(
		WithTagBits(8), WithTagsPerBucket(4), WithNumBuckets(16),
		WithClockBits(2), WithSizeBits(4), WithSizeEncoding(SizeLinear),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Put([]byte("a"), 5)
	e.Put([]byte("a"), 7)
	if got := e.WSS(); got != 7 {
		t.Fatalf("WSS() = %d, want 7", got)
	}
	if size, ok := e.SizeOf([]byte("a")); !ok || size != 7 {
		t.Fatalf("SizeOf = (%d,%v), want (7,true)", size, ok)
	}
}

func TestDisplacementDropReportsOutcomeAndBoundedWSS(t *testing.T) {
	e, err := New(
		WithTagBits(12), WithTagsPerBucket(2), WithNumBuckets(4),
		WithClockBits(2), WithSizeBits(16), WithMaxKicks(8),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 64; i++ {
		e.Put([]byte(fmt.Sprintf("k%d", i)), 9)
	}
	if e.Metrics().Dropped == 0 {
		t.Fatal("expected at least one Dropped outcome when overfilling a tiny table")
	}
	if e.WSS() > 8*9 {
		t.Fatalf("WSS() = %d exceeds table byte capacity bound", e.WSS())
	}
}

func TestConcurrentDuplicatePutsReconcileToOneEntry(t *testing.T) {
	e, err := New(WithTagBits(12), WithTagsPerBucket(4), WithNumBuckets(64))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			e.Put([]byte("a"), 4)
		}()
	}
	wg.Wait()

	size, ok := e.SizeOf([]byte("a"))
	if !ok || size != 4 {
		t.Fatalf("SizeOf(a) = (%d,%v), want (4,true)", size, ok)
	}
	wss := e.WSS()
	if wss != 4 && wss != 8 {
		t.Fatalf("WSS() = %d, want 4 or 8 before reconciliation", wss)
	}

	if got := e.Reconcile(); got != 4 {
		t.Fatalf("Reconcile() = %d, want 4", got)
	}
	if got := e.WSS(); got != 4 {
		t.Fatalf("WSS() after reconcile = %d, want 4", got)
	}
}

func TestNewRejectsNonPowerOfTwoBuckets(t *testing.T) {
	_, err := New(WithNumBuckets(17))
	if err == nil {
		t.Fatal("expected ErrConfigInvalid for non-power-of-two NUM_BUCKETS")
	}
}

func TestNewRejectsNonPowerOfTwoLockNumber(t *testing.T) {
	_, err := New(WithLockNumber(100))
	if err == nil {
		t.Fatal("expected ErrConfigInvalid for non-power-of-two LOCK_NUMBER")
	}
}

func TestNewRejectsOversizedFieldBudget(t *testing.T) {
	_, err := New(WithSizeBits(24), WithSizeBucketBits(16))
	if err == nil {
		t.Fatal("expected ErrConfigInvalid when SIZE_BITS+SIZE_BUCKET_BITS > 32")
	}
}

func TestNewRejectsScopeCountWithoutScopeBits(t *testing.T) {
	_, err := New(WithScopes(4, 0))
	if err == nil {
		t.Fatal("expected ErrConfigInvalid for NUM_SCOPE <= 0 with SCOPE_BITS > 0")
	}
}

func TestIRRHistogramObservesRepeatedAccess(t *testing.T) {
	e, err := New(WithNumBuckets(64))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 5; i++ {
		e.Put([]byte("hot"), 1)
		e.Put([]byte("filler"), 1)
	}
	counts := e.IRRHistogram().Counts()
	var total int64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		t.Fatal("expected at least one IRR observation from repeated access")
	}
}

func TestScopedAccountingTracksPerScopeSums(t *testing.T) {
	e, err := New(WithNumBuckets(64), WithScopes(4, 3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.PutScoped([]byte("a"), 10, 0)
	e.PutScoped([]byte("b"), 20, 1)
	e.PutScoped([]byte("c"), 30, 2)

	for scope, want := range map[uint64]uint64{0: 10, 1: 20, 2: 30} {
		got, ok := e.ScopeWSS(scope)
		if !ok || got != want {
			t.Fatalf("ScopeWSS(%d) = (%d,%v), want (%d,true)", scope, got, ok, want)
		}
	}
}

func TestScopeWSSDisabledByDefault(t *testing.T) {
	e, err := New(WithNumBuckets(64))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Put([]byte("a"), 10)
	if _, ok := e.ScopeWSS(0); ok {
		t.Fatal("expected ScopeWSS to report ok=false when scoping is disabled")
	}
}

func TestSizeOfMissingKeyRecordsMiss(t *testing.T) {
	e, err := New(WithNumBuckets(64))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := e.SizeOf([]byte("ghost")); ok {
		t.Fatal("expected miss for a key never put")
	}
	if e.Metrics().Misses == 0 {
		t.Fatal("expected Misses counter to be incremented")
	}
}

func TestOpportunisticAgingEndToEnd(t *testing.T) {
	e, err := New(
		WithNumBuckets(8), WithTagsPerBucket(4), WithClockBits(1),
		WithOpportunisticAging(true),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Put([]byte("neighbor"), 5)
	for i := 0; i < 12; i++ {
		e.Put([]byte(fmt.Sprintf("t%d", i)), 1)
	}
	if _, ok := e.SizeOf([]byte("neighbor")); ok {
		t.Fatal("expected neighbor key to be aged out under opportunistic aging")
	}
}
