// Package queue implements a thread-safe, blocking message queue over the
// chunked FIFO from lib/chunkqueue, using an OS wake primitive (eventfd on
// Linux, sync.Cond elsewhere) as a counting semaphore so that a dequeuer
// can sleep until an item is posted instead of spinning on the mutex.
package queue

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JMaximus76/filesync/fs/ferrors"
	"github.com/JMaximus76/filesync/lib/chunkqueue"
)

// ErrShutdown is returned by dequeue operations once Shutdown has been
// called and no more items remain, distinguishing a drained-but-live queue
// (ferrors.KindEmpty) from one that will never produce another item.
var ErrShutdown = errors.New("queue: shut down")

// Queue is a thread-safe FIFO of items of type T with blocking, non-blocking
// and timed dequeue. The zero value is not usable; construct with New.
type Queue[T any] struct {
	mu       chan struct{} // binary mutex; see lock/unlock below
	inner    *chunkqueue.Queue[T]
	wake     wakeCounter
	shutdown bool

	depth prometheus.Gauge
}

// New constructs an empty Queue whose underlying chunked storage allocates
// in blocks of chunkCap items.
func New[T any](chunkCap int) (*Queue[T], error) {
	wc, err := newWakeCounter()
	if err != nil {
		return nil, err
	}
	q := &Queue[T]{
		mu:    make(chan struct{}, 1),
		inner: chunkqueue.New[T](chunkCap),
		wake:  wc,
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "filesync_queue_depth",
			Help: "Number of items currently buffered in a message queue.",
		}),
	}
	q.mu <- struct{}{}
	return q, nil
}

func (q *Queue[T]) lock()   { <-q.mu }
func (q *Queue[T]) unlock() { q.mu <- struct{}{} }

// Describe implements prometheus.Collector.
func (q *Queue[T]) Describe(ch chan<- *prometheus.Desc) {
	q.depth.Describe(ch)
}

// Collect implements prometheus.Collector.
func (q *Queue[T]) Collect(ch chan<- prometheus.Metric) {
	q.lock()
	q.depth.Set(float64(q.inner.Len()))
	q.unlock()
	q.depth.Collect(ch)
}

// Enqueue appends an item to the back of the queue and wakes one waiter.
// Enqueuing after Shutdown returns ferrors.KindTMNotShutdown, matching the
// component's "no new work once shutdown begins" contract.
func (q *Queue[T]) Enqueue(item T) error {
	q.lock()
	if q.shutdown {
		q.unlock()
		return ferrors.New(ferrors.KindTMNotShutdown)
	}
	q.inner.Push(item)
	q.unlock()
	q.wake.Post()
	return nil
}

// DequeueBlocking waits until an item is available or the queue is shut
// down, returning ErrShutdown in the latter case once the queue is drained.
func (q *Queue[T]) DequeueBlocking() (T, error) {
	var zero T
	for {
		q.wake.Dec()
		q.lock()
		v, ok := q.inner.Pop()
		if ok {
			q.unlock()
			return v, nil
		}
		shutdown := q.shutdown
		q.unlock()
		if shutdown {
			return zero, ErrShutdown
		}
		// Woken with nothing to pop while the queue is still live (the wake
		// read returned without taking a token, or another dequeuer already
		// took the item this token stood for); loop to wait again.
	}
}

// DequeueFast returns immediately: ferrors.KindEmpty if nothing is queued
// and the queue is still live, ErrShutdown if nothing is queued and the
// queue has been shut down, or the item and nil error otherwise.
func (q *Queue[T]) DequeueFast() (T, error) {
	var zero T
	if !q.wake.TryDec() {
		q.lock()
		shutdown := q.shutdown
		q.unlock()
		if shutdown {
			return zero, ErrShutdown
		}
		return zero, ferrors.New(ferrors.KindEmpty)
	}
	q.lock()
	v, ok := q.inner.Pop()
	shutdown := q.shutdown
	q.unlock()
	if !ok {
		if shutdown {
			return zero, ErrShutdown
		}
		return zero, ferrors.New(ferrors.KindEmpty)
	}
	return v, nil
}

// DequeueTimed behaves like DequeueBlocking but gives up at deadline,
// returning ferrors.KindAgain on timeout.
func (q *Queue[T]) DequeueTimed(deadline time.Time) (T, error) {
	var zero T
	for {
		if !q.wake.DecTimed(deadline) {
			return zero, ferrors.New(ferrors.KindAgain)
		}
		q.lock()
		v, ok := q.inner.Pop()
		if ok {
			q.unlock()
			return v, nil
		}
		shutdown := q.shutdown
		q.unlock()
		if shutdown {
			return zero, ErrShutdown
		}
		if !time.Now().Before(deadline) {
			return zero, ferrors.New(ferrors.KindAgain)
		}
	}
}

// Shutdown marks the queue closed to new Enqueue calls and wakes every
// blocked and future waiter so they observe ErrShutdown once drained.
func (q *Queue[T]) Shutdown() {
	q.lock()
	q.shutdown = true
	q.unlock()
	q.wake.Close()
}

// Destroy releases the queue's resources. It fails with
// ferrors.KindTMNotShutdown if the queue has not been shut down or still
// holds unconsumed items, since there is no well-defined single-owner
// destructor for items the caller never dequeued.
func (q *Queue[T]) Destroy() error {
	q.lock()
	defer q.unlock()
	if !q.shutdown || q.inner.Len() != 0 {
		return ferrors.New(ferrors.KindTMNotShutdown)
	}
	return nil
}

// Len reports the number of items currently buffered.
func (q *Queue[T]) Len() int {
	q.lock()
	defer q.unlock()
	return q.inner.Len()
}
