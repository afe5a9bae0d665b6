package processor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/crunchmind/target-kinesis/batch"
	"github.com/crunchmind/target-kinesis/config"
	"github.com/crunchmind/target-kinesis/errors"
	"github.com/crunchmind/target-kinesis/message"
	"github.com/crunchmind/target-kinesis/metadata"
	"github.com/crunchmind/target-kinesis/metric"
	"github.com/crunchmind/target-kinesis/schema"
	"github.com/crunchmind/target-kinesis/sink"
)

// Scanner limits. Input lines are complete JSON objects and can be large;
// the initial buffer grows up to maxLineBytes before a line is rejected.
const (
	initialLineBytes = 64 * 1024
	maxLineBytes     = 16 * 1024 * 1024
)

// Flush trigger labels used in logs and metrics.
const (
	triggerThreshold  = "threshold"
	triggerEndOfInput = "end_of_input"
)

// Processor is the line-protocol state machine. It consumes one line at a
// time, dispatches by message kind, batches records, delivers full batches
// through the sink, and emits checkpoints only for data that has actually
// been flushed.
//
// A Processor is single-threaded: it exclusively owns its registry and
// accumulator, and one Run call fully processes each line before reading
// the next.
type Processor struct {
	cfg      *config.Config
	registry *schema.Registry
	acc      *batch.Accumulator
	sink     sink.Sink
	out      io.Writer
	logger   *slog.Logger
	metrics  *metric.Metrics

	// now is the batching clock, located in the timezone_offset_hours
	// zone when configured. Enrichment normalizes back to UTC, so the
	// offset never reaches emitted values. Overridable in tests.
	now func() time.Time

	// enrichAt is the run's batching timestamp, captured once so every
	// record enriched in the same run shares it.
	enrichAt time.Time

	pending     json.RawMessage
	hasPending  bool
	lastEmitted json.RawMessage
	lineNo      int
}

// New creates a Processor that delivers through deliverSink and writes
// checkpoint lines to checkpointOut. The metrics recorder may be nil.
func New(cfg *config.Config, deliverSink sink.Sink, checkpointOut io.Writer,
	logger *slog.Logger, metrics *metric.Metrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}

	clock := func() time.Time { return time.Now().UTC() }
	if cfg.TimezoneOffsetHours != nil {
		loc := time.FixedZone("offset", int(*cfg.TimezoneOffsetHours*3600))
		clock = func() time.Time { return time.Now().In(loc) }
	}

	return &Processor{
		cfg:      cfg,
		registry: schema.NewRegistry(),
		acc:      batch.NewAccumulator(cfg.MaxRecordCount, cfg.MaxSizeEstimateBytes),
		sink:     deliverSink,
		out:      checkpointOut,
		logger:   logger.With("component", "processor"),
		metrics:  metrics,
		now:      clock,
	}
}

// Run processes the full line stream from r until end-of-input or the
// first error. Any non-empty buffer remaining at end-of-input is force
// flushed. It returns the last checkpoint emitted, or nil if none.
//
// Every error is fatal to the run: no checkpoint past the last successful
// flush is emitted once an error occurs.
func (p *Processor) Run(ctx context.Context, r io.Reader) (json.RawMessage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBytes), maxLineBytes)

	p.enrichAt = p.now()

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapFatal(err, "Processor", "Run", "context canceled")
		}

		p.lineNo++
		line := scanner.Bytes()

		if p.metrics != nil {
			p.metrics.RecordLineRead()
		}

		if err := p.processLine(ctx, line); err != nil {
			return nil, p.withLineContext(err, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapFatal(err, "Processor", "Run",
			fmt.Sprintf("read input after line %d", p.lineNo))
	}

	if err := p.flush(ctx, triggerEndOfInput); err != nil {
		return nil, err
	}

	// A trailing checkpoint with nothing buffered after it is already
	// safe and is emitted even though no final flush ran.
	if err := p.emitPending(); err != nil {
		return nil, err
	}

	p.logger.Info("input exhausted",
		"lines", p.lineNo,
		"has_checkpoint", p.lastEmitted != nil)
	return p.lastEmitted, nil
}

// processLine decodes one line and dispatches on the message kind.
func (p *Processor) processLine(ctx context.Context, line []byte) error {
	msg, err := message.Decode(line)
	if err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return errors.WrapInvalid(err, "Processor", "processLine", "reject message")
	}

	if p.metrics != nil {
		p.metrics.RecordMessageProcessed(string(msg.Type))
	}

	switch msg.Type {
	case message.TypeSchema:
		return p.handleSchema(msg)
	case message.TypeRecord:
		return p.handleRecord(ctx, msg)
	case message.TypeState:
		p.handleState(msg)
		return nil
	default:
		return errors.WrapInvalid(errors.ErrUnknownMessageType,
			"Processor", "processLine", fmt.Sprintf("type %q", msg.Type))
	}
}

func (p *Processor) handleSchema(msg *message.Message) error {
	if err := p.registry.Register(msg, p.cfg.AddMetadataColumns); err != nil {
		return err
	}
	p.logger.Debug("schema registered", "stream", msg.Stream)
	return nil
}

// handleRecord enriches or strips the record, tags it with its stream,
// buffers it, and flushes when a threshold is exceeded.
func (p *Processor) handleRecord(ctx context.Context, msg *message.Message) error {
	if !p.registry.Has(msg.Stream) {
		return errors.WrapInvalid(errors.ErrUnknownStream,
			"Processor", "handleRecord", fmt.Sprintf("stream %q", msg.Stream))
	}

	if p.cfg.ValidateRecords {
		if err := p.registry.Validate(msg.Stream, msg.Record); err != nil {
			return err
		}
	}

	var rec message.Record
	if p.cfg.AddMetadataColumns {
		keyProperties, err := p.registry.KeyPropertiesFor(msg.Stream)
		if err != nil {
			return err
		}
		rec = metadata.Enrich(msg, keyProperties, p.enrichAt)
	} else {
		rec = metadata.Strip(msg.Record)
		if rec == nil {
			rec = message.Record{}
		}
	}
	rec["stream"] = msg.Stream

	p.acc.Append(rec)
	if p.metrics != nil {
		p.metrics.RecordBuffered()
	}

	if p.acc.ShouldFlush() {
		return p.flush(ctx, triggerThreshold)
	}
	return nil
}

// handleState replaces the held checkpoint. The new value supersedes any
// previous one, emitted or not.
func (p *Processor) handleState(msg *message.Message) {
	p.pending = msg.Value
	p.hasPending = true
	p.logger.Debug("checkpoint held", "line", p.lineNo)
}

// flush drains the buffer into exactly one sink delivery. On success the
// held checkpoint becomes safe and is emitted; on failure nothing is
// emitted and the error halts the run.
func (p *Processor) flush(ctx context.Context, trigger string) error {
	if p.acc.Len() == 0 {
		return nil
	}

	records := p.acc.Drain()
	start := time.Now()

	if err := p.sink.Deliver(ctx, records); err != nil {
		if p.metrics != nil {
			p.metrics.RecordDeliveryError()
		}
		return errors.Wrap(err, "Processor", "flush",
			fmt.Sprintf("deliver %d records to %s", len(records), p.sink.Name()))
	}

	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.RecordFlush(trigger, len(records), elapsed)
	}
	p.logger.Info("batch flushed",
		"trigger", trigger,
		"records", len(records),
		"sink", p.sink.Name(),
		"duration", elapsed)

	return p.emitPending()
}

// emitPending writes the held checkpoint as one line and clears it.
func (p *Processor) emitPending() error {
	if !p.hasPending {
		return nil
	}

	value := p.pending
	if value == nil {
		value = json.RawMessage("null")
	}
	if _, err := fmt.Fprintf(p.out, "%s\n", value); err != nil {
		return errors.WrapFatal(err, "Processor", "emitPending", "write checkpoint")
	}

	p.hasPending = false
	p.pending = nil
	p.lastEmitted = value
	if p.metrics != nil {
		p.metrics.RecordCheckpointEmitted()
	}
	p.logger.Debug("checkpoint emitted")
	return nil
}

// withLineContext attaches the line number and a bounded excerpt of the
// offending line to a fatal error.
func (p *Processor) withLineContext(err error, line []byte) error {
	excerpt := string(line)
	if len(excerpt) > 200 {
		excerpt = excerpt[:200] + "..."
	}
	p.logger.Error("line processing failed",
		"line", p.lineNo,
		"content", excerpt,
		"error", err)
	return errors.Wrap(err, "Processor", "Run", fmt.Sprintf("line %d", p.lineNo))
}
