// Package firehose provides the delivery-stream sink variant: one
// PutRecordBatch call per flush, records newline-terminated for downstream
// line-oriented consumers.
package firehose

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsfirehose "github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/aws/aws-sdk-go-v2/service/firehose/types"

	"github.com/crunchmind/target-kinesis/errors"
	"github.com/crunchmind/target-kinesis/message"
	"github.com/crunchmind/target-kinesis/sink"
)

// API is the slice of the Firehose client the sink needs.
type API interface {
	PutRecordBatch(
		ctx context.Context,
		params *awsfirehose.PutRecordBatchInput,
		optFns ...func(*awsfirehose.Options),
	) (*awsfirehose.PutRecordBatchOutput, error)
}

// Config holds the sink's delivery settings.
type Config struct {
	// StreamName is the Firehose delivery stream records are sent to.
	StreamName string
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.StreamName == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "stream_name is required")
	}
	return nil
}

// Sink delivers batches to a Firehose delivery stream.
type Sink struct {
	client     API
	streamName string
	logger     *slog.Logger
}

// New creates a Firehose sink from a client and configuration.
func New(client API, cfg Config, logger *slog.Logger) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		client:     client,
		streamName: cfg.StreamName,
		logger:     logger,
	}, nil
}

// Name identifies the sink variant.
func (s *Sink) Name() string {
	return "firehose"
}

// Deliver sends the batch as a single PutRecordBatch call. Each record is
// serialized as one newline-terminated JSON line. Any failed entry fails
// the whole delivery.
func (s *Sink) Deliver(ctx context.Context, records []message.Record) error {
	if err := sink.ValidateBatch(records); err != nil {
		return err
	}

	entries := make([]types.Record, 0, len(records))
	for _, rec := range records {
		data, err := sink.EncodeRecord(rec)
		if err != nil {
			return err
		}
		entries = append(entries, types.Record{Data: append(data, '\n')})
	}

	s.logger.Debug("Delivering batch to Firehose",
		"stream", s.streamName,
		"records", len(entries))

	out, err := s.client.PutRecordBatch(ctx, &awsfirehose.PutRecordBatchInput{
		DeliveryStreamName: aws.String(s.streamName),
		Records:            entries,
	})
	if err != nil {
		return errors.WrapTransient(errors.ErrDeliveryFailed, "Sink", "Deliver",
			fmt.Sprintf("put record batch to stream %q: %v", s.streamName, err))
	}

	if out.FailedPutCount != nil && *out.FailedPutCount > 0 {
		return errors.WrapTransient(errors.ErrDeliveryFailed, "Sink", "Deliver",
			fmt.Sprintf("stream %q rejected %d of %d records: %s",
				s.streamName, *out.FailedPutCount, len(entries), firstEntryError(out.RequestResponses)))
	}

	s.logger.Debug("Batch delivered to Firehose",
		"stream", s.streamName,
		"records", len(entries))

	return nil
}

// firstEntryError surfaces the first per-entry error for diagnostics.
func firstEntryError(results []types.PutRecordBatchResponseEntry) string {
	for _, r := range results {
		if r.ErrorCode != nil {
			return fmt.Sprintf("%s: %s", aws.ToString(r.ErrorCode), aws.ToString(r.ErrorMessage))
		}
	}
	return "unknown entry error"
}
