package buffer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRingBufferBasic(t *testing.T) {
	rb := NewRingBuffer[int](8)

	if !rb.Push(1) {
		t.Error("Push should succeed on empty buffer")
	}
	if !rb.Push(2) {
		t.Error("Push should succeed")
	}
	if !rb.Push(3) {
		t.Error("Push should succeed")
	}

	if rb.Len() != 3 {
		t.Errorf("Expected Len=3, got %d", rb.Len())
	}

	val, ok := rb.Pop()
	if !ok || val != 1 {
		t.Errorf("Expected 1, got %d, ok=%v", val, ok)
	}

	val, ok = rb.Pop()
	if !ok || val != 2 {
		t.Errorf("Expected 2, got %d, ok=%v", val, ok)
	}

	val, ok = rb.Pop()
	if !ok || val != 3 {
		t.Errorf("Expected 3, got %d, ok=%v", val, ok)
	}

	_, ok = rb.Pop()
	if ok {
		t.Error("Pop should return false on empty buffer")
	}
}

func TestRingBufferFull(t *testing.T) {
	rb := NewRingBuffer[int](4) // Capacity will be 4

	for i := 0; i < 4; i++ {
		if !rb.Push(i) {
			t.Errorf("Push %d should succeed", i)
		}
	}

	if rb.Push(99) {
		t.Error("Push should fail on full buffer")
	}

	rb.Pop()
	if !rb.Push(99) {
		t.Error("Push should succeed after Pop")
	}
}

func TestRingBufferConcurrent(t *testing.T) {
	rb := NewRingBuffer[int](1024)

	const producers = 4
	const itemsPerProducer = 1000

	var wg sync.WaitGroup
	var produced atomic.Int64
	var consumed atomic.Int64

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < itemsPerProducer; i++ {
				val := id*itemsPerProducer + i
				for !rb.Push(val) {
					// Spin wait for space
				}
				produced.Add(1)
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				for {
					if _, ok := rb.Pop(); !ok {
						return
					}
					consumed.Add(1)
				}
			default:
				if _, ok := rb.Pop(); ok {
					consumed.Add(1)
				}
			}
		}
	}()

	wg.Wait()
	close(done)
	time.Sleep(10 * time.Millisecond) // Allow consumer to drain

	t.Logf("Produced: %d, Consumed: %d", produced.Load(), consumed.Load())
}

func TestWriteBuffer(t *testing.T) {
	var items []int
	var mu sync.Mutex

	wb := NewWriteBuffer[int](64, 10, time.Millisecond, func(batch []int) {
		mu.Lock()
		items = append(items, batch...)
		mu.Unlock()
	})

	for i := 0; i < 50; i++ {
		wb.Push(i)
	}

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	count := len(items)
	mu.Unlock()

	if count < 50 {
		t.Errorf("Expected at least 50 items flushed, got %d", count)
	}

	wb.Close()
}

func TestWriteBufferClose(t *testing.T) {
	var flushed atomic.Int32

	wb := NewWriteBuffer[int](64, 100, time.Hour, func(batch []int) {
		flushed.Add(int32(len(batch)))
	})

	for i := 0; i < 20; i++ {
		wb.Push(i)
	}

	// Close should flush remaining
	wb.Close()

	if flushed.Load() < 20 {
		t.Errorf("Expected at least 20 items flushed on Close, got %d", flushed.Load())
	}
}

func BenchmarkRingBufferPushPop(b *testing.B) {
	rb := NewRingBuffer[int](1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rb.Push(i)
		rb.Pop()
	}
}

func BenchmarkWriteBufferPush(b *testing.B) {
	wb := NewWriteBuffer[int](1024, 64, 10*time.Microsecond, func(batch []int) {
		// No-op
	})
	defer wb.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wb.Push(i)
	}
}
