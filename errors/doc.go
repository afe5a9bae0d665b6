// Package errors provides standardized error handling for target-kinesis.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (delivery/transport side), Invalid (bad protocol input,
// non-retryable), and Fatal (unrecoverable, stop processing).
//
// Within the core pipeline every error halts the process; classification
// exists so the entry point can report protocol violations differently from
// delivery failures, and so a future supervisor could make retry decisions
// without string matching.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // delivery errors
//	errors.WrapInvalid(err, "Component", "Method", "action")    // protocol violations
//	errors.WrapFatal(err, "Component", "Method", "action")      // unrecoverable errors
//
// The generic Wrap() preserves the original error's classification.
//
// # Standard Error Variables
//
// Pre-defined error variables cover the protocol taxonomy, organized by
// category:
//
//   - Line protocol: ErrDecodeFailed, ErrMissingType, ErrUnknownMessageType
//   - Schema registry: ErrMissingKeyProperties, ErrUnknownStream, ErrValidationFailed
//   - Sink contract: ErrEmptyBatch, ErrInvalidShape, ErrDeliveryFailed
//   - Configuration: ErrInvalidConfig, ErrMissingConfig
//
// Use these variables instead of ad-hoc error messages so callers can test
// with errors.Is across wrap chains.
//
// # Integration with errors.As/Is
//
// All error types support standard library error inspection:
//
//	var ce *errors.ClassifiedError
//	if errors.As(err, &ce) {
//	    log.Printf("Component: %s, Class: %s", ce.Component, ce.Class)
//	}
//
//	if errors.Is(err, errors.ErrUnknownStream) {
//	    // record arrived before its schema
//	}
//
// Classification is preserved through error chains.
package errors
