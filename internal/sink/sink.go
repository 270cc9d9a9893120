// Package sink emits the facade's periodic WSS samples as line-oriented
// output (spec §6's output contract): "reference_index,wss_bytes\n".
package sink

import (
	"bufio"
	"io"
	"strconv"

	"github.com/cukiwss/cuki/internal/pool"
)

// Writer accepts one sample at a time.
type Writer interface {
	WriteSample(referenceIndex, wssBytes uint64) error
	Close() error
}

// formatSample renders "referenceIndex,wssBytes\n" into a pooled buffer,
// avoiding the allocation fmt.Fprintf would do per sample on the hot path.
func formatSample(referenceIndex, wssBytes uint64) *[]byte {
	buf := pool.GetSmallBuffer()
	*buf = strconv.AppendUint(*buf, referenceIndex, 10)
	*buf = append(*buf, ',')
	*buf = strconv.AppendUint(*buf, wssBytes, 10)
	*buf = append(*buf, '\n')
	return buf
}

// direct writes each sample immediately with no buffering.
type direct struct {
	w io.Writer
}

// NewDirect wraps w, writing each sample as soon as it arrives.
func NewDirect(w io.Writer) Writer {
	return &direct{w: w}
}

func (d *direct) WriteSample(referenceIndex, wssBytes uint64) error {
	buf := formatSample(referenceIndex, wssBytes)
	_, err := d.w.Write(*buf)
	pool.PutSmallBuffer(buf)
	return err
}

func (d *direct) Close() error { return nil }

// buffered wraps a bufio.Writer, used by the CLI's stdout path to avoid a
// syscall per sample.
type buffered struct {
	bw *bufio.Writer
}

// NewBuffered wraps w in a bufio.Writer of the given size (0 for the
// bufio default).
func NewBuffered(w io.Writer, size int) Writer {
	var bw *bufio.Writer
	if size > 0 {
		bw = bufio.NewWriterSize(w, size)
	} else {
		bw = bufio.NewWriter(w)
	}
	return &buffered{bw: bw}
}

func (b *buffered) WriteSample(referenceIndex, wssBytes uint64) error {
	buf := formatSample(referenceIndex, wssBytes)
	_, err := b.bw.Write(*buf)
	pool.PutSmallBuffer(buf)
	return err
}

func (b *buffered) Close() error {
	return b.bw.Flush()
}
