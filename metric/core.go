package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all pipeline-level metrics for the target.
type Metrics struct {
	// Line protocol metrics
	LinesRead         prometheus.Counter
	MessagesProcessed *prometheus.CounterVec

	// Batching and delivery metrics
	RecordsBuffered    prometheus.Counter
	BatchesFlushed     *prometheus.CounterVec
	RecordsDelivered   prometheus.Counter
	DeliveryErrors     prometheus.Counter
	FlushDuration      prometheus.Histogram
	CheckpointsEmitted prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all pipeline metrics
func NewMetrics() *Metrics {
	return &Metrics{
		LinesRead: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "target_kinesis",
				Subsystem: "input",
				Name:      "lines_read_total",
				Help:      "Total number of input lines read",
			},
		),

		MessagesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "target_kinesis",
				Subsystem: "messages",
				Name:      "processed_total",
				Help:      "Total number of messages processed",
			},
			[]string{"type"},
		),

		RecordsBuffered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "target_kinesis",
				Subsystem: "batch",
				Name:      "records_buffered_total",
				Help:      "Total number of records appended to the batch buffer",
			},
		),

		BatchesFlushed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "target_kinesis",
				Subsystem: "batch",
				Name:      "flushes_total",
				Help:      "Total number of batch flushes",
			},
			[]string{"trigger"},
		),

		RecordsDelivered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "target_kinesis",
				Subsystem: "delivery",
				Name:      "records_total",
				Help:      "Total number of records accepted by the sink",
			},
		),

		DeliveryErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "target_kinesis",
				Subsystem: "delivery",
				Name:      "errors_total",
				Help:      "Total number of failed deliveries",
			},
		),

		FlushDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "target_kinesis",
				Subsystem: "delivery",
				Name:      "flush_duration_seconds",
				Help:      "Batch flush duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		CheckpointsEmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "target_kinesis",
				Subsystem: "checkpoint",
				Name:      "emitted_total",
				Help:      "Total number of checkpoints emitted",
			},
		),
	}
}

// RecordLineRead increments the input line counter
func (m *Metrics) RecordLineRead() {
	m.LinesRead.Inc()
}

// RecordMessageProcessed increments the processed message counter
func (m *Metrics) RecordMessageProcessed(messageType string) {
	m.MessagesProcessed.WithLabelValues(messageType).Inc()
}

// RecordBuffered increments the buffered record counter
func (m *Metrics) RecordBuffered() {
	m.RecordsBuffered.Inc()
}

// RecordFlush records one completed flush and its duration
func (m *Metrics) RecordFlush(trigger string, records int, duration time.Duration) {
	m.BatchesFlushed.WithLabelValues(trigger).Inc()
	m.RecordsDelivered.Add(float64(records))
	m.FlushDuration.Observe(duration.Seconds())
}

// RecordDeliveryError increments the failed delivery counter
func (m *Metrics) RecordDeliveryError() {
	m.DeliveryErrors.Inc()
}

// RecordCheckpointEmitted increments the emitted checkpoint counter
func (m *Metrics) RecordCheckpointEmitted() {
	m.CheckpointsEmitted.Inc()
}
