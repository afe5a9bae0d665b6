// Package config loads and validates the target's configuration from a
// JSON file with TARGET_KINESIS_* environment variable overrides.
//
// A configuration selects one sink (kinesis or firehose), names the
// destination stream, and tunes batching thresholds and metadata
// enrichment. Validation normalizes sink kind aliases and rejects
// incomplete or out-of-range settings before the pipeline starts.
package config
