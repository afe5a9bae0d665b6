package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crunchmind/target-kinesis/errors"
	"github.com/crunchmind/target-kinesis/message"
)

// Sink is the delivery contract the core depends on. A flush hands the
// drained batch to exactly one Deliver call; the sink decides internally
// how the batch maps onto its wire protocol.
//
// Deliver is all-or-nothing: if the underlying transport supports partial
// failure, the implementation must resolve it to a single verdict before
// returning, because the caller's checkpoint safety depends on it.
type Sink interface {
	// Deliver sends a non-empty batch of already enriched or stripped
	// records. Blocks until the transport accepts or rejects the batch.
	Deliver(ctx context.Context, records []message.Record) error

	// Name identifies the sink variant for logging and metrics.
	Name() string
}

// ValidateBatch enforces the shape requirements shared by every sink
// variant: the batch must be a non-empty sequence and every element must be
// a record, not a hole.
func ValidateBatch(records []message.Record) error {
	if len(records) == 0 {
		return errors.WrapInvalid(errors.ErrEmptyBatch, "Sink", "Deliver", "check batch shape")
	}
	for i, rec := range records {
		if rec == nil {
			return errors.WrapInvalid(errors.ErrInvalidShape, "Sink", "Deliver",
				fmt.Sprintf("element %d is not a record", i))
		}
	}
	return nil
}

// EncodeRecord serializes one record for the wire.
func EncodeRecord(rec message.Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Sink", "EncodeRecord", "marshal record")
	}
	return data, nil
}
