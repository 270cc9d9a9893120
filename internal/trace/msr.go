package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// MSR reads MSR Cambridge-style block traces:
// timestamp,hostname,disknum,type,offset,size,responsetime
//
// The key is derived from (hostname, disknum, offset) so that repeated
// accesses to the same block hash to the same tag; size is the record's
// byte size field.
type MSR struct {
	r *csv.Reader
}

// NewMSR wraps r as an MSR trace reader.
func NewMSR(r io.Reader) *MSR {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 7
	cr.ReuseRecord = true
	return &MSR{r: cr}
}

// Next implements Reader.
func (m *MSR) Next() (Record, error) {
	fields, err := m.r.Read()
	if err != nil {
		return Record{}, err
	}

	ts, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("trace: msr: bad timestamp %q: %w", fields[0], err)
	}
	size, err := strconv.ParseUint(fields[5], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("trace: msr: bad size %q: %w", fields[5], err)
	}

	key := []byte(fields[1] + ":" + fields[2] + ":" + fields[4])
	return Record{Key: key, Size: size, Timestamp: ts}, nil
}
