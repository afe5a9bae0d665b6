// Package batch implements the size- and count-bounded accumulator that
// buffers records between deliveries and decides when a flush is due.
//
// The flush predicate is evaluated by the processor after every record
// append; schema and state messages never trigger it. Any records left in
// the buffer at end of input are force-flushed regardless of thresholds.
package batch
