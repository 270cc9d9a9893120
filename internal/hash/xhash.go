package hash

import (
	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// XXHash64 hashes b with cespare/xxhash/v2. Selected via cuki.WithHashFunc(cuki.HashXXHash).
func XXHash64(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// XXH3_64 hashes b with zeebo/xxh3. Selected via cuki.WithHashFunc(cuki.HashXXH3).
// xxh3 trades a larger state for better throughput on longer keys than FNV-1a.
func XXH3_64(b []byte) uint64 {
	return xxh3.Hash(b)
}
