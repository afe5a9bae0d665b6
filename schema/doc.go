// Package schema implements the per-stream schema registry: the current
// JSON Schema, its compiled validator, and the declared key properties for
// every stream seen on the input.
//
// Registration happens on SCHEMA messages; records referencing a stream
// that was never registered are a protocol violation. Validators are built
// with gojsonschema from the stored schema, including the bookkeeping
// columns when metadata enrichment is configured, and validation is exposed
// as an explicit operation so its policy is testable in isolation from
// buffering.
package schema
