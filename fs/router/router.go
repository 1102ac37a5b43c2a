// Package router implements a fixed array of named message queues, keyed
// by Location, so that independent worker roles can each own one slot
// without the caller having to wire up ad-hoc channels.
package router

import (
	"sync"

	"github.com/JMaximus76/filesync/fs/ferrors"
	"github.com/JMaximus76/filesync/fs/queue"
)

// Location names a queue slot within a Router.
type Location int

const (
	Database Location = iota
	General
	Main
	Network

	locationCount
)

func (l Location) String() string {
	switch l {
	case Database:
		return "Database"
	case General:
		return "General"
	case Main:
		return "Main"
	case Network:
		return "Network"
	default:
		return "Unknown"
	}
}

// Router is a fixed-size array of named queues, one per Location, shared by
// every goroutine that sends or receives on those locations.
type Router[T any] struct {
	mu    sync.Mutex
	slots [locationCount]*queue.Queue[T]
}

// New returns an empty Router with no queues installed in any slot.
func New[T any]() *Router[T] {
	return &Router[T]{}
}

// Add installs q in loc's slot. It fails with ferrors.KindArg if the slot
// is already occupied.
func (r *Router[T]) Add(loc Location, q *queue.Queue[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[loc] != nil {
		return ferrors.New(ferrors.KindArg)
	}
	r.slots[loc] = q
	return nil
}

func (r *Router[T]) get(loc Location) (*queue.Queue[T], error) {
	r.mu.Lock()
	q := r.slots[loc]
	r.mu.Unlock()
	if q == nil {
		return nil, ferrors.New(ferrors.KindArg)
	}
	return q, nil
}

// Send delivers msg to the queue installed at loc.
func (r *Router[T]) Send(loc Location, msg T) error {
	q, err := r.get(loc)
	if err != nil {
		return err
	}
	return q.Enqueue(msg)
}

// Recv blocks until a message is available on loc's queue, or the queue is
// shut down, in which case it returns queue.ErrShutdown.
func (r *Router[T]) Recv(loc Location) (T, error) {
	var zero T
	q, err := r.get(loc)
	if err != nil {
		return zero, err
	}
	return q.DequeueBlocking()
}

// Destroy shuts down and releases every installed queue. A queue that
// still holds unconsumed items fails to release with
// ferrors.KindTMNotShutdown; Destroy tolerates this per slot (leaving that
// queue installed) rather than aborting the whole router, and reports the
// first such error to the caller after attempting every slot.
func (r *Router[T]) Destroy() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for i := range r.slots {
		q := r.slots[i]
		if q == nil {
			continue
		}
		q.Shutdown()
		if err := q.Destroy(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		r.slots[i] = nil
	}
	return firstErr
}
