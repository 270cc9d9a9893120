package trace

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
)

// Synthetic generates a deterministic Zipfian-popularity reference stream
// for tests and benchmarks, without any external trace file.
type Synthetic struct {
	rng       *rand.Rand
	zipf      *rand.Zipf
	minSize   uint64
	maxSize   uint64
	count     uint64
	remaining uint64
}

// NewSynthetic builds a generator of n references over a keyspace of
// numKeys distinct keys, with popularity skew s (>1, larger is more
// skewed) and sizes drawn uniformly from [minSize, maxSize]. seed makes
// the sequence reproducible.
func NewSynthetic(n, numKeys uint64, s float64, minSize, maxSize uint64, seed int64) *Synthetic {
	rng := rand.New(rand.NewSource(seed))
	if s <= 1 {
		s = 1.1
	}
	if numKeys == 0 {
		numKeys = 1
	}
	return &Synthetic{
		rng:       rng,
		zipf:      rand.NewZipf(rng, s, 1, numKeys-1),
		minSize:   minSize,
		maxSize:   maxSize,
		remaining: n,
	}
}

// Next implements Reader.
func (s *Synthetic) Next() (Record, error) {
	if s.remaining == 0 {
		return Record{}, io.EOF
	}
	s.remaining--
	s.count++

	rank := s.zipf.Uint64()
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, rank)

	size := s.minSize
	if s.maxSize > s.minSize {
		size += uint64(s.rng.Int63n(int64(s.maxSize - s.minSize + 1)))
	}

	return Record{Key: key, Size: size, Timestamp: s.count}, nil
}

// KeyString renders a Synthetic key as a short human-readable label, for
// CLI output and tests.
func KeyString(key []byte) string {
	if len(key) != 8 {
		return fmt.Sprintf("%x", key)
	}
	return fmt.Sprintf("k%d", binary.BigEndian.Uint64(key))
}
