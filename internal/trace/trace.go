// Package trace provides readers that turn recorded or synthetic cache
// access logs into the (key, size) reference stream the facade consumes
// (spec §6's input contract). Readers carry no aging or estimation logic
// of their own.
package trace

// Record is one reference in the input stream.
type Record struct {
	Key       []byte
	Size      uint64
	Timestamp uint64 // optional; 0 if the source carries no timestamp
}

// Reader yields the next Record. It returns io.EOF (via the err return)
// when the stream is exhausted.
type Reader interface {
	Next() (Record, error)
}
