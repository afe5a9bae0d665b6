package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crunchmind/target-kinesis/errors"
)

func TestDecode(t *testing.T) {
	t.Run("schema message", func(t *testing.T) {
		line := []byte(`{"type":"SCHEMA","stream":"users",` +
			`"schema":{"type":"object","properties":{"id":{"type":"integer"}}},` +
			`"key_properties":["id"]}`)

		msg, err := Decode(line)
		require.NoError(t, err)

		assert.Equal(t, TypeSchema, msg.Type)
		assert.Equal(t, "users", msg.Stream)
		require.NotNil(t, msg.KeyProperties)
		assert.Equal(t, []string{"id"}, *msg.KeyProperties)
		assert.Contains(t, msg.Schema, "properties")
	})

	t.Run("record message", func(t *testing.T) {
		line := []byte(`{"type":"RECORD","stream":"users",` +
			`"record":{"id":1,"name":"alice"},` +
			`"time_extracted":"2024-01-15T10:00:00Z","version":"3"}`)

		msg, err := Decode(line)
		require.NoError(t, err)

		assert.Equal(t, TypeRecord, msg.Type)
		assert.Equal(t, "users", msg.Stream)
		assert.Equal(t, float64(1), msg.Record["id"])
		assert.Equal(t, "alice", msg.Record["name"])
		assert.Equal(t, "2024-01-15T10:00:00Z", msg.TimeExtracted)
		assert.Equal(t, "3", msg.Version)
	})

	t.Run("state message", func(t *testing.T) {
		line := []byte(`{"type":"STATE","value":{"bookmarks":{"users":{"id":42}}}}`)

		msg, err := Decode(line)
		require.NoError(t, err)

		assert.Equal(t, TypeState, msg.Type)
		assert.JSONEq(t, `{"bookmarks":{"users":{"id":42}}}`, string(msg.Value))
	})

	t.Run("absent key_properties stays nil", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type":"SCHEMA","stream":"users","schema":{}}`))
		require.NoError(t, err)
		assert.Nil(t, msg.KeyProperties)
	})

	t.Run("empty key_properties is not nil", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type":"SCHEMA","stream":"users","schema":{},"key_properties":[]}`))
		require.NoError(t, err)
		require.NotNil(t, msg.KeyProperties)
		assert.Empty(t, *msg.KeyProperties)
	})

	t.Run("malformed line", func(t *testing.T) {
		_, err := Decode([]byte(`{not json`))
		assert.ErrorIs(t, err, errors.ErrDecodeFailed)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("empty line", func(t *testing.T) {
		_, err := Decode(nil)
		assert.ErrorIs(t, err, errors.ErrDecodeFailed)
	})

	t.Run("missing type discriminator", func(t *testing.T) {
		_, err := Decode([]byte(`{"stream":"users","record":{"id":1}}`))
		assert.ErrorIs(t, err, errors.ErrMissingType)
	})
}

func TestMessageValidate(t *testing.T) {
	t.Run("record without stream", func(t *testing.T) {
		msg := &Message{Type: TypeRecord, Record: Record{"id": 1}}
		assert.ErrorIs(t, msg.Validate(), errors.ErrMissingStream)
	})

	t.Run("schema without stream", func(t *testing.T) {
		msg := &Message{Type: TypeSchema, Schema: map[string]any{}}
		assert.ErrorIs(t, msg.Validate(), errors.ErrMissingStream)
	})

	t.Run("state needs no stream", func(t *testing.T) {
		msg := &Message{Type: TypeState, Value: json.RawMessage(`{}`)}
		assert.NoError(t, msg.Validate())
	})
}

func TestRecordClone(t *testing.T) {
	orig := Record{"id": 1, "name": "alice"}
	clone := orig.Clone()

	clone["name"] = "bob"
	assert.Equal(t, "alice", orig["name"])

	assert.Nil(t, Record(nil).Clone())
}
