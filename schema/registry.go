package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/crunchmind/target-kinesis/errors"
	"github.com/crunchmind/target-kinesis/message"
	"github.com/crunchmind/target-kinesis/metadata"
)

// Entry holds everything registered for a single stream: the stored schema
// (with metadata columns merged in when configured), the compiled validator,
// and the declared key properties.
type Entry struct {
	Schema        map[string]any
	KeyProperties []string
	validator     *gojsonschema.Schema
}

// Registry maps stream names to their current schema context. A later
// SCHEMA message for the same stream supersedes the stored entry. Entries
// are exclusively owned by the processing goroutine; no locking.
type Registry struct {
	streams map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{streams: make(map[string]*Entry)}
}

// Register stores the schema, validator, and key properties carried by a
// SCHEMA message. When enrichMetadata is set, the bookkeeping column
// definitions are merged into the schema's property set before the
// validator is built, so enriched records validate against the stored
// schema.
func (r *Registry) Register(msg *message.Message, enrichMetadata bool) error {
	if msg.Stream == "" {
		return errors.WrapInvalid(errors.ErrMissingStream, "Registry", "Register", "schema message")
	}
	if msg.KeyProperties == nil {
		return errors.WrapInvalid(errors.ErrMissingKeyProperties, "Registry", "Register",
			fmt.Sprintf("register stream %q", msg.Stream))
	}

	stored := cloneSchema(msg.Schema)
	if stored == nil {
		stored = map[string]any{}
	}
	if enrichMetadata {
		addMetadataColumns(stored)
	}

	validator, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(stored))
	if err != nil {
		return errors.WrapInvalid(err, "Registry", "Register",
			fmt.Sprintf("compile schema for stream %q", msg.Stream))
	}

	r.streams[msg.Stream] = &Entry{
		Schema:        stored,
		KeyProperties: *msg.KeyProperties,
		validator:     validator,
	}
	return nil
}

// Has reports whether a stream has been registered.
func (r *Registry) Has(stream string) bool {
	_, ok := r.streams[stream]
	return ok
}

// SchemaFor returns the stored schema for a stream.
func (r *Registry) SchemaFor(stream string) (map[string]any, error) {
	entry, err := r.lookup(stream, "SchemaFor")
	if err != nil {
		return nil, err
	}
	return entry.Schema, nil
}

// KeyPropertiesFor returns the declared key properties for a stream.
func (r *Registry) KeyPropertiesFor(stream string) ([]string, error) {
	entry, err := r.lookup(stream, "KeyPropertiesFor")
	if err != nil {
		return nil, err
	}
	return entry.KeyProperties, nil
}

// Validate checks one record against the stream's compiled schema. It is an
// explicit operation, independent of buffering, so validation policy can be
// switched on and off without touching the batching path.
func (r *Registry) Validate(stream string, rec message.Record) error {
	entry, err := r.lookup(stream, "Validate")
	if err != nil {
		return err
	}

	result, err := entry.validator.Validate(gojsonschema.NewGoLoader(map[string]any(rec)))
	if err != nil {
		return errors.WrapInvalid(err, "Registry", "Validate",
			fmt.Sprintf("validate record for stream %q", stream))
	}

	if !result.Valid() {
		descs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descs = append(descs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return errors.WrapInvalid(errors.ErrValidationFailed, "Registry", "Validate",
			fmt.Sprintf("stream %q: %s", stream, strings.Join(descs, "; ")))
	}

	return nil
}

func (r *Registry) lookup(stream, method string) (*Entry, error) {
	entry, ok := r.streams[stream]
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrUnknownStream, "Registry", method,
			fmt.Sprintf("lookup stream %q", stream))
	}
	return entry, nil
}

// addMetadataColumns merges the bookkeeping column definitions into the
// schema's property set, creating it if absent.
func addMetadataColumns(schema map[string]any) {
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		props = map[string]any{}
		schema["properties"] = props
	}
	for name, def := range metadata.ColumnSchemas() {
		props[name] = def
	}
}

// cloneSchema deep-copies a schema document so registration never mutates
// the decoded message.
func cloneSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		copied := make(map[string]any, len(schema))
		for k, v := range schema {
			copied[k] = v
		}
		return copied
	}
	var clone map[string]any
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := make(map[string]any, len(schema))
		for k, v := range schema {
			copied[k] = v
		}
		return copied
	}
	return clone
}
