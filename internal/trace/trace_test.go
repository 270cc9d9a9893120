package trace

import (
	"io"
	"strings"
	"testing"
)

func TestSyntheticIsDeterministicForSameSeed(t *testing.T) {
	a := NewSynthetic(50, 20, 1.2, 1, 100, 42)
	b := NewSynthetic(50, 20, 1.2, 1, 100, 42)

	for i := 0; i < 50; i++ {
		ra, errA := a.Next()
		rb, errB := b.Next()
		if errA != nil || errB != nil {
			t.Fatalf("unexpected error at record %d: %v / %v", i, errA, errB)
		}
		if string(ra.Key) != string(rb.Key) || ra.Size != rb.Size {
			t.Fatalf("record %d diverged: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestSyntheticEOFAfterN(t *testing.T) {
	s := NewSynthetic(3, 10, 1.5, 1, 10, 1)
	for i := 0; i < 3; i++ {
		if _, err := s.Next(); err != nil {
			t.Fatalf("record %d: unexpected error %v", i, err)
		}
	}
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after n records, got %v", err)
	}
}

func TestSyntheticSizesWithinBounds(t *testing.T) {
	s := NewSynthetic(200, 30, 1.3, 10, 20, 7)
	for i := 0; i < 200; i++ {
		r, err := s.Next()
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if r.Size < 10 || r.Size > 20 {
			t.Fatalf("record %d size %d out of [10,20]", i, r.Size)
		}
	}
}

func TestMSRParsesFields(t *testing.T) {
	data := "1000,hostA,0,Read,4096,8192,12\n2000,hostA,0,Write,4096,4096,5\n"
	r := NewMSR(strings.NewReader(data))

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec.Timestamp != 1000 || rec.Size != 8192 {
		t.Fatalf("got %+v, want timestamp=1000 size=8192", rec)
	}

	rec2, err := r.Next()
	if err != nil {
		t.Fatalf("Next (2nd): %v", err)
	}
	if rec2.Size != 4096 {
		t.Fatalf("got size %d, want 4096", rec2.Size)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestTwitterParsesFieldsAndSumsKeyValueSize(t *testing.T) {
	data := "100,abc123,16,256,client1,get,0\n"
	r := NewTwitter(strings.NewReader(data))

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec.Timestamp != 100 || rec.Size != 272 || string(rec.Key) != "abc123" {
		t.Fatalf("got %+v, want timestamp=100 size=272 key=abc123", rec)
	}
}
