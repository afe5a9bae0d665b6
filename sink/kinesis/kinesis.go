// Package kinesis provides the batch-oriented sink variant: one PutRecords
// call per flush, partition-keyed per record.
package kinesis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awskinesis "github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"

	"github.com/crunchmind/target-kinesis/errors"
	"github.com/crunchmind/target-kinesis/message"
	"github.com/crunchmind/target-kinesis/sink"
)

// API is the slice of the Kinesis client the sink needs.
type API interface {
	PutRecords(
		ctx context.Context,
		params *awskinesis.PutRecordsInput,
		optFns ...func(*awskinesis.Options),
	) (*awskinesis.PutRecordsOutput, error)
}

// Config holds the sink's delivery settings.
type Config struct {
	// StreamName is the Kinesis stream records are delivered to.
	StreamName string
	// PartitionKeyField names the record field whose value becomes each
	// entry's partition key.
	PartitionKeyField string
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.StreamName == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "stream_name is required")
	}
	if c.PartitionKeyField == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
			"partition_key_field is required")
	}
	return nil
}

// Sink delivers batches to a Kinesis stream.
type Sink struct {
	client            API
	streamName        string
	partitionKeyField string
	logger            *slog.Logger
}

// New creates a Kinesis sink from a client and configuration.
func New(client API, cfg Config, logger *slog.Logger) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		client:            client,
		streamName:        cfg.StreamName,
		partitionKeyField: cfg.PartitionKeyField,
		logger:            logger,
	}, nil
}

// Name identifies the sink variant.
func (s *Sink) Name() string {
	return "kinesis"
}

// Deliver sends the batch as a single PutRecords call. Any failed entry
// fails the whole delivery: the caller assumes all-or-nothing semantics.
func (s *Sink) Deliver(ctx context.Context, records []message.Record) error {
	if err := sink.ValidateBatch(records); err != nil {
		return err
	}

	entries := make([]types.PutRecordsRequestEntry, 0, len(records))
	for i, rec := range records {
		data, err := sink.EncodeRecord(rec)
		if err != nil {
			return err
		}

		keyValue, ok := rec[s.partitionKeyField]
		if !ok {
			return errors.WrapInvalid(errors.ErrInvalidShape, "Sink", "Deliver",
				fmt.Sprintf("record %d has no partition key field %q", i, s.partitionKeyField))
		}

		entries = append(entries, types.PutRecordsRequestEntry{
			Data:         data,
			PartitionKey: aws.String(fmt.Sprintf("%v", keyValue)),
		})
	}

	s.logger.Debug("Delivering batch to Kinesis",
		"stream", s.streamName,
		"records", len(entries))

	out, err := s.client.PutRecords(ctx, &awskinesis.PutRecordsInput{
		StreamName: aws.String(s.streamName),
		Records:    entries,
	})
	if err != nil {
		return errors.WrapTransient(errors.ErrDeliveryFailed, "Sink", "Deliver",
			fmt.Sprintf("put records to stream %q: %v", s.streamName, err))
	}

	if out.FailedRecordCount != nil && *out.FailedRecordCount > 0 {
		return errors.WrapTransient(errors.ErrDeliveryFailed, "Sink", "Deliver",
			fmt.Sprintf("stream %q rejected %d of %d records: %s",
				s.streamName, *out.FailedRecordCount, len(entries), firstEntryError(out.Records)))
	}

	s.logger.Debug("Batch delivered to Kinesis",
		"stream", s.streamName,
		"records", len(entries))

	return nil
}

// firstEntryError surfaces the first per-entry error for diagnostics.
func firstEntryError(results []types.PutRecordsResultEntry) string {
	for _, r := range results {
		if r.ErrorCode != nil {
			return fmt.Sprintf("%s: %s", aws.ToString(r.ErrorCode), aws.ToString(r.ErrorMessage))
		}
	}
	return "unknown entry error"
}
