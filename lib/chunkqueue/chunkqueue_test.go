package chunkqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOLiteralScenario(t *testing.T) {
	q := New[string](2) // small chunk capacity to force chunk boundaries

	for _, v := range []string{"A", "B", "C", "D", "E"} {
		q.Push(v)
	}

	for _, want := range []string{"A", "B", "C"} {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}

	q.Push("F")
	q.Push("G")

	for _, want := range []string{"D", "E", "F", "G"} {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}

	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestEmptyQueuePop(t *testing.T) {
	q := New[int](DefaultChunkCapacity)
	_, ok := q.Pop()
	assert.False(t, ok)
	assert.True(t, q.Empty())
}

func TestLenTracksPushPop(t *testing.T) {
	q := New[int](4)
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	assert.Equal(t, 10, q.Len())
	for i := 0; i < 5; i++ {
		_, _ = q.Pop()
	}
	assert.Equal(t, 5, q.Len())
}
