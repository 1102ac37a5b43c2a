package router

import (
	"testing"

	"github.com/JMaximus76/filesync/fs/ferrors"
	"github.com/JMaximus76/filesync/fs/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *queue.Queue[string] {
	t.Helper()
	q, err := queue.New[string](16)
	require.NoError(t, err)
	return q
}

func TestAddRejectsOccupiedSlot(t *testing.T) {
	r := New[string]()
	require.NoError(t, r.Add(General, newTestQueue(t)))
	assert.True(t, ferrors.Is(r.Add(General, newTestQueue(t)), ferrors.KindArg))
}

func TestSendRecvRoundtrip(t *testing.T) {
	r := New[string]()
	require.NoError(t, r.Add(Main, newTestQueue(t)))

	require.NoError(t, r.Send(Main, "hello"))
	v, err := r.Recv(Main)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestSendToEmptySlotFails(t *testing.T) {
	r := New[string]()
	err := r.Send(Database, "x")
	assert.True(t, ferrors.Is(err, ferrors.KindArg))
}

func TestDestroyToleratesNonEmptyQueue(t *testing.T) {
	r := New[string]()
	require.NoError(t, r.Add(Network, newTestQueue(t)))
	require.NoError(t, r.Send(Network, "unconsumed"))

	require.NoError(t, r.Add(General, newTestQueue(t)))

	err := r.Destroy()
	assert.True(t, ferrors.Is(err, ferrors.KindTMNotShutdown))
}

func TestDestroyReleasesEmptyQueues(t *testing.T) {
	r := New[string]()
	require.NoError(t, r.Add(Main, newTestQueue(t)))

	assert.NoError(t, r.Destroy())
}
