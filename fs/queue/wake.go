package queue

import "time"

// wakeCounter is a counting semaphore used to implement blocking,
// non-blocking and timed dequeue on top of the chunked queue's own mutex:
// enqueue posts one token per item, dequeue waits for a token before taking
// the lock to pop. Shutdown posts a very large sentinel value so that any
// currently blocked or future Dec/DecTimed call returns promptly without
// the queue itself needing to track individual waiters; the queue layer is
// responsible for checking its own shutdown flag once woken, exactly as
// the original's "write a sentinel to the counter, observe a shutdown flag
// under the lock" design note describes.
type wakeCounter interface {
	Post()
	Dec()
	DecTimed(deadline time.Time) bool
	TryDec() bool
	Close()
}
