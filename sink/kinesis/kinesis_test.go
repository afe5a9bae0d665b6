package kinesis

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awskinesis "github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crunchmind/target-kinesis/errors"
	"github.com/crunchmind/target-kinesis/message"
)

// fakeAPI captures PutRecords inputs and returns a scripted response.
type fakeAPI struct {
	inputs []*awskinesis.PutRecordsInput
	out    *awskinesis.PutRecordsOutput
	err    error
}

func (f *fakeAPI) PutRecords(
	_ context.Context,
	params *awskinesis.PutRecordsInput,
	_ ...func(*awskinesis.Options),
) (*awskinesis.PutRecordsOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return &awskinesis.PutRecordsOutput{FailedRecordCount: aws.Int32(0)}, nil
}

func newTestSink(t *testing.T, api API) *Sink {
	t.Helper()
	s, err := New(api, Config{StreamName: "events", PartitionKeyField: "id"}, nil)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Run("requires stream name", func(t *testing.T) {
		_, err := New(&fakeAPI{}, Config{PartitionKeyField: "id"}, nil)
		assert.ErrorIs(t, err, errors.ErrMissingConfig)
	})

	t.Run("requires partition key field", func(t *testing.T) {
		_, err := New(&fakeAPI{}, Config{StreamName: "events"}, nil)
		assert.ErrorIs(t, err, errors.ErrMissingConfig)
	})
}

func TestDeliver(t *testing.T) {
	t.Run("one call per batch, keyed per record", func(t *testing.T) {
		api := &fakeAPI{}
		s := newTestSink(t, api)

		records := []message.Record{
			{"id": 1, "name": "alice"},
			{"id": 2, "name": "bob"},
		}
		require.NoError(t, s.Deliver(context.Background(), records))

		require.Len(t, api.inputs, 1)
		input := api.inputs[0]
		assert.Equal(t, "events", aws.ToString(input.StreamName))
		require.Len(t, input.Records, 2)
		assert.Equal(t, "1", aws.ToString(input.Records[0].PartitionKey))
		assert.Equal(t, "2", aws.ToString(input.Records[1].PartitionKey))
		assert.JSONEq(t, `{"id":1,"name":"alice"}`, string(input.Records[0].Data))
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		api := &fakeAPI{}
		s := newTestSink(t, api)

		err := s.Deliver(context.Background(), nil)
		assert.ErrorIs(t, err, errors.ErrEmptyBatch)
		assert.Empty(t, api.inputs)
	})

	t.Run("rejects nil record element", func(t *testing.T) {
		api := &fakeAPI{}
		s := newTestSink(t, api)

		err := s.Deliver(context.Background(), []message.Record{{"id": 1}, nil})
		assert.ErrorIs(t, err, errors.ErrInvalidShape)
		assert.Empty(t, api.inputs)
	})

	t.Run("rejects record without partition key", func(t *testing.T) {
		api := &fakeAPI{}
		s := newTestSink(t, api)

		err := s.Deliver(context.Background(), []message.Record{{"name": "no-id"}})
		assert.ErrorIs(t, err, errors.ErrInvalidShape)
		assert.Empty(t, api.inputs)
	})

	t.Run("transport error", func(t *testing.T) {
		api := &fakeAPI{err: assert.AnError}
		s := newTestSink(t, api)

		err := s.Deliver(context.Background(), []message.Record{{"id": 1}})
		assert.ErrorIs(t, err, errors.ErrDeliveryFailed)
		assert.True(t, errors.IsTransient(err))
	})

	t.Run("partial failure fails the whole batch", func(t *testing.T) {
		api := &fakeAPI{out: &awskinesis.PutRecordsOutput{
			FailedRecordCount: aws.Int32(1),
			Records: []types.PutRecordsResultEntry{
				{SequenceNumber: aws.String("1")},
				{ErrorCode: aws.String("ProvisionedThroughputExceededException"),
					ErrorMessage: aws.String("slow down")},
			},
		}}
		s := newTestSink(t, api)

		err := s.Deliver(context.Background(), []message.Record{{"id": 1}, {"id": 2}})
		require.ErrorIs(t, err, errors.ErrDeliveryFailed)
		assert.Contains(t, err.Error(), "ProvisionedThroughputExceededException")
	})
}
