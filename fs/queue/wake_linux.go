//go:build linux

package queue

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/JMaximus76/filesync/fs/ferrors"
)

// fdWake is the Linux wake primitive: an eventfd in EFD_SEMAPHORE mode.
// Writing n to the fd increases its counter by n; reading consumes exactly
// one unit of the counter per read (blocking or failing with EAGAIN in
// non-blocking mode when the counter is zero), which is exactly the
// counting-semaphore semantics the original used.
type fdWake struct {
	fd int
}

const shutdownSentinel = uint64(1) << 32

func newWakeCounter() (wakeCounter, error) {
	fd, err := unix.Eventfd(0, unix.EFD_SEMAPHORE|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, ferrors.WrapErrno(err, "eventfd")
	}
	return &fdWake{fd: fd}, nil
}

func (w *fdWake) writeValue(v uint64) {
	var buf [8]byte
	putUint64(buf[:], v)
	for {
		_, err := unix.Write(w.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		return
	}
}

func (w *fdWake) readOne(nonblock bool) bool {
	var buf [8]byte
	for {
		if nonblock {
			if err := unix.SetNonblock(w.fd, true); err != nil {
				return false
			}
		} else {
			_ = unix.SetNonblock(w.fd, false)
		}
		_, err := unix.Read(w.fd, buf[:])
		switch err {
		case nil:
			return true
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return false
		default:
			return false
		}
	}
}

func (w *fdWake) Post() {
	w.writeValue(1)
}

func (w *fdWake) TryDec() bool {
	return w.readOne(true)
}

func (w *fdWake) Dec() {
	w.readOne(false)
}

func (w *fdWake) DecTimed(deadline time.Time) bool {
	for {
		timeout := time.Until(deadline)
		if timeout <= 0 {
			return w.readOne(true)
		}
		pfd := []unix.PollFd{{Fd: int32(w.fd), Events: unix.POLLIN}}
		ms := int(timeout / time.Millisecond)
		if ms <= 0 {
			ms = 1
		}
		n, err := unix.Poll(pfd, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil || n == 0 {
			return w.readOne(true)
		}
		if w.readOne(true) {
			return true
		}
	}
}

func (w *fdWake) Close() {
	w.writeValue(shutdownSentinel)
}

// putUint64 stores v in host byte order, which is how the kernel reads an
// eventfd write.
func putUint64(b []byte, v uint64) {
	*(*uint64)(unsafe.Pointer(&b[0])) = v
}
