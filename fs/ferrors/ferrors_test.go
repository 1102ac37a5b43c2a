package ferrors

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "FULL", KindFull.String())
	assert.Equal(t, "FW_SKIP", KindFWSkip.String())
	assert.Contains(t, Kind(9999).String(), "Kind(")
}

func TestWrapAndKindOf(t *testing.T) {
	base := New(KindEmpty)
	assert.Equal(t, KindEmpty, KindOf(base))

	wrapped := Wrap(base, KindFull, "draining batch")
	assert.True(t, Is(wrapped, KindFull))
	assert.Contains(t, wrapped.Error(), "draining batch")

	assert.Nil(t, Wrap(nil, KindFull, "unused"))
}

func TestFromErrno(t *testing.T) {
	assert.Equal(t, KindAccess, FromErrno(syscall.EACCES))
	assert.Equal(t, KindInter, FromErrno(syscall.EINTR))
	assert.Equal(t, KindSys, FromErrno(syscall.Errno(123123123)))
}

func TestRetriable(t *testing.T) {
	assert.True(t, Retriable(KindInter))
	assert.True(t, Retriable(KindAgain))
	assert.False(t, Retriable(KindFull))
}

func TestWrapErrno(t *testing.T) {
	err := WrapErrno(syscall.EACCES, "open dir")
	assert.True(t, Is(err, KindAccess))
}
