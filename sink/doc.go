// Package sink defines the delivery contract between the stream processor
// and the outbound transport, plus the batch-shape guards shared by every
// variant.
//
// Two variants implement the contract: sink/kinesis sends each flush as one
// multiplexed PutRecords call keyed per record, and sink/firehose sends it
// as one PutRecordBatch call of newline-terminated JSON records. Wire
// details, authentication, and retry policy live entirely behind Deliver.
package sink
