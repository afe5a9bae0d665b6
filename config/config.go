package config

import (
	"fmt"
	"strings"

	"github.com/crunchmind/target-kinesis/errors"
)

// Sink kind constants
const (
	SinkKindKinesis  = "kinesis"
	SinkKindFirehose = "firehose"
)

// Config represents the complete target configuration
type Config struct {
	// SinkKind selects the delivery backend: "kinesis" or "firehose".
	// "batch" and "per-record" are accepted as legacy aliases.
	SinkKind string `json:"sink_kind"`

	// StreamName is the Kinesis stream or Firehose delivery stream name.
	StreamName string `json:"stream_name"`

	// PartitionKeyField names the record field used as the Kinesis
	// partition key. Ignored by the firehose sink.
	PartitionKeyField string `json:"partition_key_field"`

	// Batching thresholds. A flush happens when the buffered record
	// count exceeds MaxRecordCount or the size estimate exceeds
	// MaxSizeEstimateBytes.
	MaxRecordCount       int `json:"max_record_count"`
	MaxSizeEstimateBytes int `json:"max_size_estimate_bytes"`

	// AddMetadataColumns enables _sdc_* bookkeeping columns on every
	// delivered record.
	AddMetadataColumns bool `json:"add_metadata_columns"`

	// ValidateRecords enables JSON Schema validation of each record
	// against its stream's registered schema.
	ValidateRecords bool `json:"validate_records"`

	// TimezoneOffsetHours shifts the batching timestamp clock. Nil means
	// UTC.
	TimezoneOffsetHours *float64 `json:"timezone_offset_hours"`

	// MetricsPort enables the Prometheus /metrics server when positive.
	MetricsPort int `json:"metrics_port"`

	// AWSRegion overrides the SDK's default region resolution when set.
	AWSRegion string `json:"aws_region"`
}

// Default batching thresholds
const (
	DefaultMaxRecordCount       = 10
	DefaultMaxSizeEstimateBytes = 1000
	DefaultPartitionKeyField    = "id"
)

// DefaultConfig returns a configuration with all defaults applied and no
// stream selected.
func DefaultConfig() *Config {
	return &Config{
		SinkKind:             SinkKindKinesis,
		PartitionKeyField:    DefaultPartitionKeyField,
		MaxRecordCount:       DefaultMaxRecordCount,
		MaxSizeEstimateBytes: DefaultMaxSizeEstimateBytes,
	}
}

// normalizeSinkKind resolves sink kind aliases to canonical names.
func normalizeSinkKind(kind string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case SinkKindKinesis, "batch":
		return SinkKindKinesis, true
	case SinkKindFirehose, "per-record", "per_record":
		return SinkKindFirehose, true
	default:
		return "", false
	}
}

// Validate checks the configuration for completeness and normalizes the
// sink kind. It is called by the Loader after all layers are applied.
func (c *Config) Validate() error {
	kind, ok := normalizeSinkKind(c.SinkKind)
	if !ok {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Config", "Validate",
			fmt.Sprintf("unknown sink_kind %q", c.SinkKind))
	}
	c.SinkKind = kind

	if c.StreamName == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"Config", "Validate", "stream_name is required")
	}

	if c.MaxRecordCount <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Config", "Validate",
			fmt.Sprintf("max_record_count must be positive, got %d", c.MaxRecordCount))
	}
	if c.MaxSizeEstimateBytes <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Config", "Validate",
			fmt.Sprintf("max_size_estimate_bytes must be positive, got %d", c.MaxSizeEstimateBytes))
	}

	if c.SinkKind == SinkKindKinesis && c.PartitionKeyField == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"Config", "Validate", "partition_key_field is required for the kinesis sink")
	}

	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Config", "Validate",
			fmt.Sprintf("metrics_port out of range: %d", c.MetricsPort))
	}

	if c.TimezoneOffsetHours != nil {
		offset := *c.TimezoneOffsetHours
		if offset < -12 || offset > 14 {
			return errors.WrapInvalid(errors.ErrInvalidConfig,
				"Config", "Validate",
				fmt.Sprintf("timezone_offset_hours out of range: %v", offset))
		}
	}

	return nil
}
