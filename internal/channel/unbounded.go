package channel

import (
	"sync"
	"sync/atomic"

	"github.com/skytrace/missionmap/internal/queue"
)

// Unbounded is a channel whose Send never blocks on a slow receiver.
// Values are delivered in Send order. After Close, pending values are
// still delivered and then the receive channel is closed.
type Unbounded[T any] struct {
	in      chan T
	out     chan T
	pending *queue.Queue[T]
	length  atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewUnbounded creates an unbounded channel and starts its pump.
func NewUnbounded[T any]() *Unbounded[T] {
	u := &Unbounded[T]{
		in:      make(chan T),
		out:     make(chan T),
		pending: queue.New[T](),
	}
	go u.pump()
	return u
}

// Send enqueues v. It is a no-op once the channel is closed.
func (u *Unbounded[T]) Send(v T) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.closed {
		return
	}
	u.length.Add(1)
	u.in <- v
}

// Receive returns the receive-only channel
func (u *Unbounded[T]) Receive() <-chan T {
	return u.out
}

// Len returns the number of values sent but not yet received.
func (u *Unbounded[T]) Len() int {
	return int(u.length.Load())
}

// Close stops accepting values. Safe to call more than once.
func (u *Unbounded[T]) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return
	}
	u.closed = true
	close(u.in)
}

func (u *Unbounded[T]) pump() {
	defer close(u.out)

	in := u.in
	var head T
	hasHead := false

	for {
		if !hasHead {
			head, hasHead = u.pending.Pop()
		}
		if in == nil && !hasHead {
			return
		}

		// a nil channel disables its select case
		var out chan T
		if hasHead {
			out = u.out
		}

		select {
		case v, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			u.pending.Push(v)
		case out <- head:
			u.length.Add(-1)
			var zero T
			head, hasHead = zero, false
		}
	}
}
