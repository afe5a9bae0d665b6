package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crunchmind/target-kinesis/errors"
	"github.com/crunchmind/target-kinesis/message"
	"github.com/crunchmind/target-kinesis/metadata"
)

func testTime() time.Time {
	return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
}

func schemaMessage(stream string, keyProps []string) *message.Message {
	return &message.Message{
		Type:   message.TypeSchema,
		Stream: stream,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":   map[string]any{"type": "integer"},
				"name": map[string]any{"type": "string"},
			},
			"required": []any{"id"},
		},
		KeyProperties: &keyProps,
	}
}

func TestRegister(t *testing.T) {
	t.Run("stores schema and key properties", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register(schemaMessage("users", []string{"id"}), false))

		assert.True(t, reg.Has("users"))

		keyProps, err := reg.KeyPropertiesFor("users")
		require.NoError(t, err)
		assert.Equal(t, []string{"id"}, keyProps)

		stored, err := reg.SchemaFor("users")
		require.NoError(t, err)
		assert.Contains(t, stored, "properties")
	})

	t.Run("missing key_properties", func(t *testing.T) {
		reg := NewRegistry()
		msg := schemaMessage("users", nil)
		msg.KeyProperties = nil

		err := reg.Register(msg, false)
		assert.ErrorIs(t, err, errors.ErrMissingKeyProperties)
		assert.False(t, reg.Has("users"))
	})

	t.Run("later schema supersedes earlier", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register(schemaMessage("users", []string{"id"}), false))
		require.NoError(t, reg.Register(schemaMessage("users", []string{"id", "name"}), false))

		keyProps, err := reg.KeyPropertiesFor("users")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, keyProps)
	})

	t.Run("metadata columns merged into stored schema", func(t *testing.T) {
		reg := NewRegistry()
		msg := schemaMessage("users", []string{"id"})
		require.NoError(t, reg.Register(msg, true))

		stored, err := reg.SchemaFor("users")
		require.NoError(t, err)

		props, ok := stored["properties"].(map[string]any)
		require.True(t, ok)
		for _, col := range metadata.Columns() {
			assert.Contains(t, props, col)
		}

		// The decoded message's schema is left untouched.
		origProps := msg.Schema["properties"].(map[string]any)
		assert.NotContains(t, origProps, metadata.ColumnBatchedAt)
	})

	t.Run("metadata columns off by default", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Register(schemaMessage("users", []string{"id"}), false))

		stored, _ := reg.SchemaFor("users")
		props := stored["properties"].(map[string]any)
		assert.NotContains(t, props, metadata.ColumnBatchedAt)
	})
}

func TestLookupUnknownStream(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.SchemaFor("orders")
	assert.ErrorIs(t, err, errors.ErrUnknownStream)

	_, err = reg.KeyPropertiesFor("orders")
	assert.ErrorIs(t, err, errors.ErrUnknownStream)

	err = reg.Validate("orders", message.Record{"id": 1})
	assert.ErrorIs(t, err, errors.ErrUnknownStream)
}

func TestValidate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(schemaMessage("users", []string{"id"}), false))

	t.Run("valid record", func(t *testing.T) {
		err := reg.Validate("users", message.Record{"id": 1, "name": "alice"})
		assert.NoError(t, err)
	})

	t.Run("wrong type", func(t *testing.T) {
		err := reg.Validate("users", message.Record{"id": "not-an-int"})
		assert.ErrorIs(t, err, errors.ErrValidationFailed)
	})

	t.Run("missing required field", func(t *testing.T) {
		err := reg.Validate("users", message.Record{"name": "bob"})
		assert.ErrorIs(t, err, errors.ErrValidationFailed)
	})

	t.Run("enriched record validates against augmented schema", func(t *testing.T) {
		strict := NewRegistry()
		msg := schemaMessage("users", []string{"id"})
		msg.Schema["additionalProperties"] = false
		require.NoError(t, strict.Register(msg, true))

		rec := metadata.Enrich(&message.Message{
			Type:   message.TypeRecord,
			Stream: "users",
			Record: message.Record{"id": 7},
		}, []string{"id"}, testTime())

		// Key properties serialize as an array; the augmented column type
		// is nullable string, so blank it for the validation check.
		rec[metadata.ColumnPrimaryKey] = "id"

		assert.NoError(t, strict.Validate("users", rec))
	})
}
