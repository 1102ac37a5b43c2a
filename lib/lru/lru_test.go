package lru

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intCmp(a, b int) bool { return a == b }

func TestGetMissThenHit(t *testing.T) {
	var misses, hits, evicts []int

	c := New[int, string](2, intCmp,
		func(key int) (string, error) {
			misses = append(misses, key)
			return "v", nil
		},
		func(key int, value string) { hits = append(hits, key) },
		func(key int, value string) { evicts = append(evicts, key) },
	)

	v, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.Equal(t, []int{1}, misses)

	v, err = c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, hits)
	assert.Equal(t, []int{1}, misses, "second Get(1) must not call onMiss again")
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []int
	c := New[int, int](2, intCmp,
		func(key int) (int, error) { return key * 10, nil },
		nil,
		func(key int, value int) { evicted = append(evicted, key) },
	)

	_, err := c.Get(1)
	require.NoError(t, err)
	_, err = c.Get(2)
	require.NoError(t, err)

	// touch 1 so 2 becomes least-recently-used
	_, err = c.Get(1)
	require.NoError(t, err)

	_, err = c.Get(3)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, evicted)
	assert.Equal(t, 2, c.Len())
}

func TestMissErrorIsNotCached(t *testing.T) {
	c := New[int, int](2, intCmp,
		func(key int) (int, error) { return 0, assert.AnError },
		nil, nil,
	)
	_, err := c.Get(1)
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}
