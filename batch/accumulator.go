package batch

import (
	"encoding/json"
	"fmt"

	"github.com/crunchmind/target-kinesis/message"
)

// Default flush thresholds: whichever of 10 records or ~1kB is crossed
// first triggers a flush.
const (
	DefaultMaxRecords = 10
	DefaultMaxBytes   = 1000
)

// Accumulator buffers pending records between flushes and tracks the
// accounting that decides flush timing. It is owned by a single processing
// goroutine; no locking.
//
// The size figure is an estimate: the running sum of each record's JSON
// encoding plus a two-byte separator allowance. It is monotonically
// non-decreasing under Append and zero for an empty buffer; exact byte
// accounting is deliberately not attempted.
type Accumulator struct {
	maxRecords int
	maxBytes   int

	records []message.Record
	size    int
}

// NewAccumulator creates an accumulator with the given thresholds.
// Non-positive values fall back to the defaults.
func NewAccumulator(maxRecords, maxBytes int) *Accumulator {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Accumulator{
		maxRecords: maxRecords,
		maxBytes:   maxBytes,
	}
}

// Append adds a record to the tail of the buffer.
func (a *Accumulator) Append(rec message.Record) {
	a.records = append(a.records, rec)
	a.size += estimate(rec) + 2
}

// ShouldFlush reports whether the buffer has grown past either threshold.
// Both comparisons are strict: a buffer at exactly the maximum is not yet
// flushed.
func (a *Accumulator) ShouldFlush() bool {
	return len(a.records) > a.maxRecords || a.size > a.maxBytes
}

// Drain returns the buffered records and resets the accumulator. Called
// when a flush is about to occur or at end of stream.
func (a *Accumulator) Drain() []message.Record {
	records := a.records
	a.records = nil
	a.size = 0
	return records
}

// Len returns the number of pending records.
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Size returns the current serialized-size estimate in bytes.
func (a *Accumulator) Size() int {
	return a.size
}

func estimate(rec message.Record) int {
	data, err := json.Marshal(rec)
	if err != nil {
		// Records come off the decoder and the enricher, both of which
		// produce marshalable values; fall back to a textual length.
		return len(fmt.Sprint(rec))
	}
	return len(data)
}
