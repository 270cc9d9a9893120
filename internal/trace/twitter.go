package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Twitter reads Twitter cache-trace format CSV records:
// timestamp,anonkey,keysize,valuesize,client,op,ttl
//
// Size is keysize+valuesize, the total bytes the reference would occupy.
type Twitter struct {
	r *csv.Reader
}

// NewTwitter wraps r as a Twitter trace reader.
func NewTwitter(r io.Reader) *Twitter {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 7
	cr.ReuseRecord = true
	return &Twitter{r: cr}
}

// Next implements Reader.
func (tw *Twitter) Next() (Record, error) {
	fields, err := tw.r.Read()
	if err != nil {
		return Record{}, err
	}

	ts, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("trace: twitter: bad timestamp %q: %w", fields[0], err)
	}
	keySize, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("trace: twitter: bad keysize %q: %w", fields[2], err)
	}
	valSize, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("trace: twitter: bad valuesize %q: %w", fields[3], err)
	}

	key := []byte(fields[1])
	return Record{Key: key, Size: keySize + valSize, Timestamp: ts}, nil
}
