// Package processor implements the streaming batch-accumulation state
// machine at the heart of the target.
//
// The processor reads newline-delimited protocol messages, registers
// schemas, buffers records with count and size accounting, delivers full
// batches through a sink in exactly one call per flush, and tracks the
// latest checkpoint token. A checkpoint is written to the output boundary
// only once every record preceding it has been durably delivered, so a
// crash never leaves the emitted checkpoint ahead of the delivered data.
//
// Processing is strictly sequential with O(1) memory relative to total
// input: one line is fully handled before the next is read, and the buffer
// never holds more than one batch.
package processor
