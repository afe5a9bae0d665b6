package metadata

import (
	"time"

	"github.com/crunchmind/target-kinesis/message"
)

// Bookkeeping column names, following the Stitch integration-schema
// convention for _sdc metadata columns.
const (
	ColumnBatchedAt    = "_sdc_batched_at"
	ColumnDeletedAt    = "_sdc_deleted_at"
	ColumnExtractedAt  = "_sdc_extracted_at"
	ColumnPrimaryKey   = "_sdc_primary_key"
	ColumnReceivedAt   = "_sdc_received_at"
	ColumnSequence     = "_sdc_sequence"
	ColumnTableVersion = "_sdc_table_version"
)

// Columns returns the full set of bookkeeping column names.
func Columns() []string {
	return []string{
		ColumnBatchedAt,
		ColumnDeletedAt,
		ColumnExtractedAt,
		ColumnPrimaryKey,
		ColumnReceivedAt,
		ColumnSequence,
		ColumnTableVersion,
	}
}

// ColumnSchemas returns the JSON Schema property definitions for the
// bookkeeping columns, for merging into a stream schema's property set.
func ColumnSchemas() map[string]any {
	return map[string]any{
		ColumnBatchedAt:    map[string]any{"type": []any{"null", "string"}, "format": "date-time"},
		ColumnDeletedAt:    map[string]any{"type": []any{"null", "string"}},
		ColumnExtractedAt:  map[string]any{"type": []any{"null", "string"}, "format": "date-time"},
		ColumnPrimaryKey:   map[string]any{"type": []any{"null", "string"}},
		ColumnReceivedAt:   map[string]any{"type": []any{"null", "string"}, "format": "date-time"},
		ColumnSequence:     map[string]any{"type": []any{"integer"}},
		ColumnTableVersion: map[string]any{"type": []any{"null", "string"}},
	}
}

// Enrich populates the bookkeeping columns on a record in place and returns
// it. The batching timestamp is normalized to UTC regardless of its
// location; the sequence number is the epoch milliseconds of the same
// instant, so records enriched with one run's timestamp share a sequence
// value.
//
// The deletion timestamp is carried through from the record when present;
// extraction timestamp and table version come from the enclosing RECORD
// message.
func Enrich(msg *message.Message, keyProperties []string, ts time.Time) message.Record {
	rec := msg.Record
	if rec == nil {
		rec = message.Record{}
	}

	batchedAt := Timestamp(ts)

	rec[ColumnBatchedAt] = batchedAt
	if _, ok := rec[ColumnDeletedAt]; !ok {
		rec[ColumnDeletedAt] = nil
	}
	rec[ColumnExtractedAt] = extractedAt(msg.TimeExtracted)
	rec[ColumnPrimaryKey] = keyProperties
	rec[ColumnReceivedAt] = batchedAt
	rec[ColumnSequence] = ts.UnixMilli()
	rec[ColumnTableVersion] = msg.Version

	return rec
}

// Strip removes every bookkeeping column from a record in place and returns
// it. Stripping twice equals stripping once.
func Strip(rec message.Record) message.Record {
	if rec == nil {
		return rec
	}
	for _, col := range Columns() {
		delete(rec, col)
	}
	return rec
}

// Timestamp serializes a timestamp normalized to UTC with no timezone
// suffix. Sub-second precision is microseconds, omitted entirely when zero.
func Timestamp(ts time.Time) string {
	utc := ts.UTC()
	if utc.Nanosecond() == 0 {
		return utc.Format("2006-01-02T15:04:05")
	}
	return utc.Format("2006-01-02T15:04:05.000000")
}

// extractedAt maps an absent time_extracted to an explicit null.
func extractedAt(timeExtracted string) any {
	if timeExtracted == "" {
		return nil
	}
	return timeExtracted
}
