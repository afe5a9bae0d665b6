// Package metric provides Prometheus instrumentation for the target's
// pipeline: input lines read, messages processed by type, records buffered,
// flushes by trigger, delivery outcomes, and checkpoints emitted.
//
// The registry is self-contained (no default-registry globals) and an
// optional HTTP server exposes /metrics and /health when a metrics port is
// configured.
package metric
