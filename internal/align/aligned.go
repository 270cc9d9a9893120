// Package align provides aligned allocation for the bucket table's backing
// storage: 32-byte alignment on CPUs with AVX2, cache-line (64-byte)
// alignment otherwise.
package align

import (
	"unsafe"

	"github.com/klauspost/cpuid/v2"
)

const (
	// CacheLineSize is the typical CPU cache line size in bytes.
	CacheLineSize = 64
	// avx2Alignment is the alignment AVX2 loads/stores prefer.
	avx2Alignment = 32
)

// Preferred returns the alignment the current CPU benefits from for bulk
// word-at-a-time BitVector scans: AVX2 width when available, else the
// baseline cache-line size.
func Preferred() int {
	if cpuid.CPU.Supports(cpuid.AVX2) {
		return avx2Alignment
	}
	return CacheLineSize
}

// Uint64Slice allocates a []uint64 of count words whose first element is
// aligned to Preferred(). The table backing a BitVector uses this so that
// cross-word reads within a single bucket tend to stay in one cache line.
func Uint64Slice(count int) []uint64 {
	if count <= 0 {
		return nil
	}
	alignment := Preferred()
	wordAlign := alignment / 8
	if wordAlign < 1 {
		wordAlign = 1
	}

	raw := make([]uint64, count+wordAlign)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	misalignment := addr % uintptr(alignment)
	if misalignment == 0 {
		return raw[:count]
	}
	offsetWords := (uintptr(alignment) - misalignment) / 8
	return raw[offsetWords : offsetWords+uintptr(count)]
}
