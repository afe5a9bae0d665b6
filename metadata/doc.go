// Package metadata implements the bookkeeping-column transform applied to
// records before buffering: Enrich adds the seven _sdc columns (batching,
// deletion, extraction and receipt timestamps, key properties, sequence
// number, table version), Strip removes them.
//
// Exactly one of the two runs per record, selected by the
// add_metadata_columns configuration flag. All timestamps are normalized to
// UTC with no timezone suffix before serialization.
package metadata
