package ferrors

import (
	"errors"
	"syscall"
)

// FromErrno maps a raw OS errno to a Kind, mirroring the original's
// errno-to-error-kind collaborator (treated as a fixed mapping here rather
// than reimplementing errno→string tables).
func FromErrno(errno syscall.Errno) Kind {
	switch errno {
	case syscall.EINTR:
		return KindInter
	case syscall.EAGAIN:
		return KindAgain
	case syscall.EACCES, syscall.EPERM:
		return KindAccess
	case syscall.ENOMEM:
		return KindResource
	case syscall.ENAMETOOLONG:
		return KindPathLen
	case syscall.ENOENT, syscall.ENOTDIR:
		return KindInvalPath
	case syscall.EMFILE, syscall.ENFILE:
		return KindBadFD
	case syscall.EPIPE:
		return KindPipe
	case syscall.ECONNABORTED:
		return KindConnectionAbort
	case syscall.ECONNRESET:
		return KindConnectionReset
	case syscall.EHOSTUNREACH, syscall.ENETUNREACH:
		return KindLANHostUnreach
	default:
		return KindSys
	}
}

// WrapErrno wraps a raw syscall error with the Kind FromErrno maps it to.
func WrapErrno(err error, context string) error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return Wrap(err, FromErrno(errno), context)
	}
	return Wrap(err, KindSys, context)
}

// Retriable reports whether the Kind represents a condition the original
// retries within the same call (EINTR) or that a caller may reasonably
// retry after a short backoff (EAGAIN).
func Retriable(kind Kind) bool {
	return kind == KindInter || kind == KindAgain
}
