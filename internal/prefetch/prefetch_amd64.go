//go:build amd64

package prefetch

import "unsafe"

// PrefetchT0 prefetches data into all cache levels (L1, L2, L3).
// This is the most aggressive prefetch hint, suitable when data will be
// accessed very soon. No assembly implementation is wired in, so this is a
// no-op placeholder like the non-amd64 build.
func PrefetchT0(addr unsafe.Pointer) {}

// PrefetchT1 is the L2/L3 prefetch hint. Like PrefetchT0, it is a no-op
// placeholder.
func PrefetchT1(addr unsafe.Pointer) {}

// PrefetchT2 is the L3-only prefetch hint. Like PrefetchT0, it is a no-op
// placeholder.
func PrefetchT2(addr unsafe.Pointer) {}

// PrefetchNTA is the non-temporal prefetch hint. Like PrefetchT0, it is a
// no-op placeholder.
func PrefetchNTA(addr unsafe.Pointer) {}

// PrefetchW is the prefetch-for-write hint. Like PrefetchT0, it is a no-op
// placeholder.
func PrefetchW(addr unsafe.Pointer) {}
