package message

import (
	"encoding/json"

	"github.com/crunchmind/target-kinesis/errors"
)

// Type identifies the kind of a line-protocol message.
type Type string

// Message type discriminators as they appear on the wire.
const (
	TypeSchema Type = "SCHEMA"
	TypeRecord Type = "RECORD"
	TypeState  Type = "STATE"
)

// Record is a single data record as carried by a RECORD message. Values are
// arbitrary JSON; keys are column names.
type Record map[string]any

// Clone returns a shallow copy of the record. Enrichment and stripping
// mutate their input, so callers that need the original keep a clone.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Message is one decoded line of the replication protocol: a tagged union of
// SCHEMA, RECORD, and STATE. Fields not used by a given type are zero.
type Message struct {
	Type   Type   `json:"type"`
	Stream string `json:"stream,omitempty"`

	// SCHEMA fields. KeyProperties is a pointer so that an absent
	// key_properties key can be told apart from an empty list.
	Schema        map[string]any `json:"schema,omitempty"`
	KeyProperties *[]string      `json:"key_properties,omitempty"`

	// RECORD fields.
	Record        Record `json:"record,omitempty"`
	TimeExtracted string `json:"time_extracted,omitempty"`
	Version       any    `json:"version,omitempty"`

	// STATE field: an opaque checkpoint token.
	Value json.RawMessage `json:"value,omitempty"`
}

// Validate checks the structural requirements common to all message kinds:
// a discriminator must be present, and SCHEMA/RECORD messages must name
// their stream. Unknown discriminators are the processor's concern.
func (m *Message) Validate() error {
	if m.Type == "" {
		return errors.ErrMissingType
	}
	if (m.Type == TypeSchema || m.Type == TypeRecord) && m.Stream == "" {
		return errors.ErrMissingStream
	}
	return nil
}
