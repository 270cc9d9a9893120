// Package aging drives the window-based clock decrement schedule for a
// ccf.CCF when opportunistic aging is disabled. It amortizes MaxClock
// full-table decrement passes over WINDOW_SIZE references, so that an
// entry untouched for one window's worth of references ages out on its own
// (spec §4.4).
package aging

import "sync"

// Sweeper is the subset of ccf.CCF the controller needs. Kept narrow so
// aging has no import-cycle dependency on the ccf package's internals.
type Sweeper interface {
	SweepRange(startBucket, count uint64) (freed int, freedBytes uint64)
	NumBuckets() uint64
}

// Controller spreads one full-table clock decrement pass across stride =
// WINDOW_SIZE/MaxClock references, so MaxClock passes run per window and
// an unrefreshed entry's clock reaches 0 roughly one window after its last
// touch.
type Controller struct {
	mu              sync.Mutex // guards refs and cursor across concurrent Puts
	bucketsPerTouch uint64     // largest chunk one reference sweeps: ceil(N/stride)
	stride          uint64
	refs            uint64
	cursor          uint64
	numBuckets      uint64
}

// NewController sizes the per-reference sweep chunk from the window size,
// the clock field's saturation value, and the table's bucket count.
// windowSize and numBuckets must be positive; maxClock must be >= 1.
func NewController(windowSize int64, maxClock uint64, numBuckets uint64) *Controller {
	passesPerWindow := maxClock
	if passesPerWindow == 0 {
		passesPerWindow = 1
	}
	stride := windowSize / int64(passesPerWindow)
	if stride < 1 {
		stride = 1
	}
	bucketsPerTouch := (numBuckets + uint64(stride) - 1) / uint64(stride)
	if bucketsPerTouch == 0 {
		bucketsPerTouch = 1
	}
	return &Controller{
		bucketsPerTouch: bucketsPerTouch,
		stride:          uint64(stride),
		numBuckets:      numBuckets,
	}
}

// OnReference runs one incremental chunk of the sweep, advancing the
// cursor around the bucket ring. Call once per accepted reference (spec
// §4.4's window-driven mode). The chunk is sized so that exactly N buckets
// are swept every stride references; when N < stride most chunks are
// empty. Returns how many slots were aged out.
func (c *Controller) OnReference(s Sweeper) (freed int, freedBytes uint64) {
	if c.numBuckets == 0 {
		return 0, 0
	}
	c.mu.Lock()
	pos := c.refs % c.stride
	c.refs++
	count := (pos+1)*c.numBuckets/c.stride - pos*c.numBuckets/c.stride
	start := c.cursor
	c.cursor = (c.cursor + count) % c.numBuckets
	c.mu.Unlock()
	return s.SweepRange(start, count)
}
