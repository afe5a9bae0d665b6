package batch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crunchmind/target-kinesis/message"
)

func rec(i int) message.Record {
	return message.Record{"id": i}
}

func TestAccumulatorCountThreshold(t *testing.T) {
	acc := NewAccumulator(3, 1<<20)

	for i := 0; i < 3; i++ {
		acc.Append(rec(i))
		assert.False(t, acc.ShouldFlush(), "no flush at count %d", i+1)
	}

	// Strictly greater than the maximum.
	acc.Append(rec(3))
	assert.True(t, acc.ShouldFlush())
	assert.Equal(t, 4, acc.Len())
}

func TestAccumulatorSizeThreshold(t *testing.T) {
	acc := NewAccumulator(1000, 50)

	acc.Append(message.Record{"v": "short"})
	assert.False(t, acc.ShouldFlush())

	acc.Append(message.Record{"v": "a much longer value that pushes the estimate past fifty bytes"})
	assert.True(t, acc.ShouldFlush())
}

func TestAccumulatorSizeEstimate(t *testing.T) {
	t.Run("zero for empty buffer", func(t *testing.T) {
		acc := NewAccumulator(10, 1000)
		assert.Zero(t, acc.Size())
	})

	t.Run("monotonically non-decreasing", func(t *testing.T) {
		acc := NewAccumulator(1000, 1<<20)
		prev := acc.Size()
		for i := 0; i < 20; i++ {
			acc.Append(message.Record{"id": i, "payload": fmt.Sprintf("row-%d", i)})
			require.GreaterOrEqual(t, acc.Size(), prev)
			prev = acc.Size()
		}
	})

	t.Run("zero again after drain", func(t *testing.T) {
		acc := NewAccumulator(10, 1000)
		acc.Append(rec(1))
		require.NotZero(t, acc.Size())

		acc.Drain()
		assert.Zero(t, acc.Size())
	})
}

func TestAccumulatorDrain(t *testing.T) {
	acc := NewAccumulator(10, 1000)
	acc.Append(rec(1))
	acc.Append(rec(2))

	records := acc.Drain()
	require.Len(t, records, 2)
	assert.Equal(t, rec(1), records[0])
	assert.Equal(t, rec(2), records[1])

	assert.Zero(t, acc.Len())
	assert.False(t, acc.ShouldFlush())
	assert.Empty(t, acc.Drain())
}

func TestAccumulatorDefaults(t *testing.T) {
	acc := NewAccumulator(0, 0)

	for i := 0; i < DefaultMaxRecords; i++ {
		acc.Append(message.Record{"i": i})
	}
	// Ten small records stay under both defaults.
	assert.False(t, acc.ShouldFlush())

	acc.Append(message.Record{"i": DefaultMaxRecords})
	assert.True(t, acc.ShouldFlush())
}
