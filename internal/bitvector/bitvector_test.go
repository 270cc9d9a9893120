package bitvector

import (
	"math/rand"
	"testing"
)

func TestGetSetRoundTrip(t *testing.T) {
	bv := New(320)

	cases := []struct {
		off uint64
		len int
		v   uint64
	}{
		{0, 8, 0xAB},
		{8, 16, 0xBEEF},
		{60, 8, 0x3C}, // crosses a word boundary
		{100, 1, 1},
		{101, 1, 0},
		{200, 64, 0xDEADBEEFCAFEBABE},
	}

	for _, c := range cases {
		bv.Set(c.off, c.len, c.v)
		got := bv.Get(c.off, c.len)
		if got != c.v {
			t.Errorf("off=%d len=%d: got %x want %x", c.off, c.len, got, c.v)
		}
	}
}

func TestSetPreservesSurroundingBits(t *testing.T) {
	bv := New(128)
	bv.SetRange(0, 128)

	bv.Set(60, 8, 0) // clear an 8-bit field that straddles a word boundary

	for i := uint64(0); i < 60; i++ {
		if bv.Get(i, 1) != 1 {
			t.Fatalf("bit %d outside range was clobbered", i)
		}
	}
	for i := uint64(68); i < 128; i++ {
		if bv.Get(i, 1) != 1 {
			t.Fatalf("bit %d outside range was clobbered", i)
		}
	}
	if bv.Get(60, 8) != 0 {
		t.Fatal("field was not cleared")
	}
}

func TestRandomRoundTrip(t *testing.T) {
	const nbits = 4096
	bv := New(nbits)
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		length := 1 + r.Intn(64)
		off := uint64(r.Intn(int(nbits) - 64))
		var v uint64
		if length == 64 {
			v = r.Uint64()
		} else {
			v = r.Uint64() & ((uint64(1) << uint(length)) - 1)
		}
		bv.Set(off, length, v)
		if got := bv.Get(off, length); got != v {
			t.Fatalf("iteration %d: off=%d len=%d got %x want %x", i, off, length, got, v)
		}
	}
}

func TestSetRangeClearRange(t *testing.T) {
	bv := New(200)
	bv.SetRange(10, 50)
	for i := uint64(10); i < 60; i++ {
		if bv.Get(i, 1) != 1 {
			t.Fatalf("bit %d should be set", i)
		}
	}
	bv.ClearRange(20, 10)
	for i := uint64(20); i < 30; i++ {
		if bv.Get(i, 1) != 0 {
			t.Fatalf("bit %d should be cleared", i)
		}
	}
	if bv.Get(10, 1) != 1 || bv.Get(59, 1) != 1 {
		t.Fatal("bits outside cleared range should remain set")
	}
}

func TestEmptyRangeIsNoOp(t *testing.T) {
	bv := New(64)
	bv.SetRange(5, 0)
	if bv.Get(0, 64) != 0 {
		t.Fatal("zero-length SetRange mutated the vector")
	}
}
