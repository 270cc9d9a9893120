package cuki

import "github.com/cukiwss/cuki/internal/hash"

// SizeEncoding selects how the byte-size field of a slot is interpreted.
type SizeEncoding int

const (
	// SizeLinear stores the exact truncated size (saturates at the field's max value).
	SizeLinear SizeEncoding = iota
	// SizeBucket stores a logarithmic-stride quantum; decoded size is v * 2^SizeBucketBits.
	SizeBucket
)

// HashFunc selects the underlying 64-bit hash used to derive tags and bucket indices.
type HashFunc int

const (
	// HashFNV uses the package's hand-rolled FNV-1a hash (default, no external dep).
	HashFNV HashFunc = iota
	// HashXXHash uses cespare/xxhash/v2.
	HashXXHash
	// HashXXH3 uses zeebo/xxh3.
	HashXXH3
)

// config holds the construction configuration for an Estimator, enumerated in spec §6.
type config struct {
	TagsPerBucket  int // slots per bucket
	TagBits        int // fingerprint width
	SizeEncode     SizeEncoding
	SizeBits       int // size-field width
	SizeBucketBits int // quantization shift for SizeBucket
	ClockBits      int // clock field width
	ScopeBits      int // scope field width (0 disables per-scope accounting)
	NumScope       int // number of scopes when ScopeBits > 0

	WindowSize int64 // sliding window, in references
	NumBuckets int64 // N, must be a power of two
	LockNumber int   // stripe count, must be a power of two
	MaxKicks   int   // displacement bound

	OppoAging bool // opportunistic aging vs window-driven sweep

	ReportInterval int64 // references between samples
	TimeDivisor    int64 // divides ReportInterval for higher-cadence sampling

	HashFunc HashFunc

	// IRR histogram sharding (internal/irr's last-seen index), independent of NumBuckets.
	IRRShardCount int

	OnSample func(referenceIndex uint64, wssBytes uint64)
	OnDrop   func(keyHash uint64, size uint64)
}

// Option configures an Estimator at construction time.
type Option func(*config)

// defaultConfig returns the spec's suggested defaults (S1-style small table aside).
func defaultConfig() *config {
	return &config{
		TagsPerBucket:  4,
		TagBits:        12,
		SizeEncode:     SizeLinear,
		SizeBits:       16,
		SizeBucketBits: 8,
		ClockBits:      2,
		ScopeBits:      0,
		NumScope:       0,
		WindowSize:     1 << 20,
		NumBuckets:     1 << 16,
		LockNumber:     256,
		MaxKicks:       500,
		OppoAging:      false,
		ReportInterval: 10000,
		TimeDivisor:    1,
		HashFunc:       HashFNV,
		IRRShardCount:  256,
	}
}

// WithTagsPerBucket sets the number of slots per bucket (B in spec §3). Typically 4.
func WithTagsPerBucket(n int) Option {
	return func(c *config) { c.TagsPerBucket = n }
}

// WithTagBits sets the fingerprint width in bits.
func WithTagBits(n int) Option {
	return func(c *config) { c.TagBits = n }
}

// WithSizeEncoding selects LINEAR or BUCKET size-field encoding.
func WithSizeEncoding(enc SizeEncoding) Option {
	return func(c *config) { c.SizeEncode = enc }
}

// WithSizeBits sets the size-field width in bits.
func WithSizeBits(n int) Option {
	return func(c *config) { c.SizeBits = n }
}

// WithSizeBucketBits sets the quantization shift used under SizeBucket encoding.
// Per spec §9, SizeBits+SizeBucketBits must not exceed 32; this is enforced at New.
func WithSizeBucketBits(n int) Option {
	return func(c *config) { c.SizeBucketBits = n }
}

// WithClockBits sets the clock field width. Higher values give finer aging resolution.
func WithClockBits(n int) Option {
	return func(c *config) { c.ClockBits = n }
}

// WithScopes enables per-scope WSS accounting with the given field width and scope count.
// Pass scopeBits=0 (the default) to disable scope accounting entirely.
func WithScopes(scopeBits, numScope int) Option {
	return func(c *config) {
		c.ScopeBits = scopeBits
		c.NumScope = numScope
	}
}

// WithWindowSize sets the sliding recency window, in references.
func WithWindowSize(refs int64) Option {
	return func(c *config) { c.WindowSize = refs }
}

// WithNumBuckets sets N, the bucket count. Must be a power of two.
func WithNumBuckets(n int64) Option {
	return func(c *config) { c.NumBuckets = n }
}

// WithLockNumber sets the bucket-lock stripe count. Must be a power of two.
func WithLockNumber(n int) Option {
	return func(c *config) { c.LockNumber = n }
}

// WithMaxKicks bounds the cuckoo displacement loop. Default 500.
func WithMaxKicks(n int) Option {
	return func(c *config) { c.MaxKicks = n }
}

// WithOpportunisticAging switches to piggyback-on-insertion aging instead of
// a window-driven sweep.
func WithOpportunisticAging(enabled bool) Option {
	return func(c *config) { c.OppoAging = enabled }
}

// WithReportInterval sets how many references pass between emitted samples,
// and the divisor applied to it for higher-cadence reporting.
func WithReportInterval(interval, divisor int64) Option {
	return func(c *config) {
		c.ReportInterval = interval
		if divisor <= 0 {
			divisor = 1
		}
		c.TimeDivisor = divisor
	}
}

// WithHashFunc selects the hash family used to derive tags and bucket indices.
func WithHashFunc(h HashFunc) Option {
	return func(c *config) { c.HashFunc = h }
}

// WithIRRShardCount sets the shard count of the IRR last-seen index.
func WithIRRShardCount(n int) Option {
	return func(c *config) { c.IRRShardCount = n }
}

// WithOnSample registers a callback invoked every time a WSS sample is emitted.
func WithOnSample(fn func(referenceIndex uint64, wssBytes uint64)) Option {
	return func(c *config) { c.OnSample = fn }
}

// WithOnDrop registers a callback invoked whenever a put exhausts MAX_KICKS
// and the last evicted entry is dropped (spec §7's CapacityExhausted
// recovery path). keyHash is the hash of the put's key; size is the decoded
// size of the dropped entry, which may belong to a different key.
func WithOnDrop(fn func(keyHash uint64, size uint64)) Option {
	return func(c *config) { c.OnDrop = fn }
}

// hasher resolves the configured HashFunc to a concrete 64-bit hash function.
func (c *config) hasher() func([]byte) uint64 {
	switch c.HashFunc {
	case HashXXHash:
		return hash.XXHash64
	case HashXXH3:
		return hash.XXH3_64
	default:
		return hash.Bytes
	}
}
