package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	assert.Equal(t, "transient", ErrorTransient.String())
	assert.Equal(t, "invalid", ErrorInvalid.String())
	assert.Equal(t, "fatal", ErrorFatal.String())
	assert.Equal(t, "unknown", ErrorClass(42).String())
}

func TestClassification(t *testing.T) {
	t.Run("protocol errors are invalid", func(t *testing.T) {
		for _, err := range []error{
			ErrDecodeFailed,
			ErrMissingType,
			ErrMissingStream,
			ErrUnknownMessageType,
			ErrMissingKeyProperties,
			ErrUnknownStream,
			ErrValidationFailed,
			ErrEmptyBatch,
			ErrInvalidShape,
		} {
			assert.True(t, IsInvalid(err), "expected %v to be invalid", err)
			assert.Equal(t, ErrorInvalid, Classify(err))
		}
	})

	t.Run("delivery errors are transient", func(t *testing.T) {
		assert.True(t, IsTransient(ErrDeliveryFailed))
		assert.Equal(t, ErrorTransient, Classify(ErrDeliveryFailed))
	})

	t.Run("config errors are fatal", func(t *testing.T) {
		assert.True(t, IsFatal(ErrInvalidConfig))
		assert.True(t, IsFatal(ErrMissingConfig))
	})

	t.Run("nil is not anything", func(t *testing.T) {
		assert.False(t, IsInvalid(nil))
		assert.False(t, IsTransient(nil))
		assert.False(t, IsFatal(nil))
	})
}

func TestWrap(t *testing.T) {
	t.Run("wrap format", func(t *testing.T) {
		err := Wrap(ErrUnknownStream, "Processor", "handleRecord", "stream lookup")
		require.Error(t, err)
		assert.Equal(t, "Processor.handleRecord: stream lookup failed: record references an unregistered stream",
			err.Error())
		assert.True(t, stderrors.Is(err, ErrUnknownStream))
	})

	t.Run("wrap nil returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "a", "b", "c"))
		assert.NoError(t, WrapInvalid(nil, "a", "b", "c"))
		assert.NoError(t, WrapTransient(nil, "a", "b", "c"))
		assert.NoError(t, WrapFatal(nil, "a", "b", "c"))
	})

	t.Run("classification survives wrapping", func(t *testing.T) {
		err := WrapInvalid(ErrDecodeFailed, "Decoder", "Decode", "parse line")
		assert.True(t, IsInvalid(err))
		assert.True(t, stderrors.Is(err, ErrDecodeFailed))

		var ce *ClassifiedError
		require.True(t, stderrors.As(err, &ce))
		assert.Equal(t, ErrorInvalid, ce.Class)
		assert.Equal(t, "Decoder", ce.Component)
	})

	t.Run("explicit class overrides sentinel class", func(t *testing.T) {
		// A delivery error wrapped as fatal reads as fatal.
		err := WrapFatal(fmt.Errorf("socket closed"), "Sink", "Deliver", "put records")
		assert.True(t, IsFatal(err))
		assert.False(t, IsTransient(err))
	})
}
