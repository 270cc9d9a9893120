// Package pool provides sync.Pool utilities for reducing allocations.
package pool

import "sync"

// SmallBufferPool is a pool of small byte buffers (256 bytes), sized for
// short line-oriented output like a single WSS sample.
var SmallBufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 256)
		return &b
	},
}

// GetSmallBuffer retrieves a small byte buffer from the pool.
func GetSmallBuffer() *[]byte {
	return SmallBufferPool.Get().(*[]byte)
}

// PutSmallBuffer returns a small byte buffer to the pool.
func PutSmallBuffer(b *[]byte) {
	if b == nil {
		return
	}
	*b = (*b)[:0]
	SmallBufferPool.Put(b)
}
