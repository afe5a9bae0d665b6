// Package message defines the line-protocol message model for
// target-kinesis and the decoder that turns raw input lines into typed
// messages.
//
// Every input line is one complete JSON object carrying a "type"
// discriminator: SCHEMA declares a stream's schema and key properties,
// RECORD carries one data record for a previously declared stream, and
// STATE carries an opaque checkpoint token.
//
// Decode is a pure function; it never mutates shared state, so a decode
// failure leaves the rest of the pipeline untouched.
package message
