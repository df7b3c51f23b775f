package queue

import (
	"context"
	"sync"
	"time"

	domain "github.com/oshokin/button-presser/internal/domain/actuator"
)

// Queue is an unbounded FIFO of triggers.
type Queue struct {
	// mu protects pending and closed.
	mu sync.Mutex
	// pending holds accepted triggers in arrival order.
	pending []domain.Trigger
	// closed is set once Close has been called.
	closed bool
	// ready has capacity one and is signalled whenever pending grows or the queue closes.
	ready chan struct{}
	// now stamps triggers on arrival.
	now func() time.Time
}

// New creates an empty open queue.
func New() *Queue {
	return &Queue{
		ready: make(chan struct{}, 1),
		now:   time.Now,
	}
}

// Send enqueues one trigger on behalf of source. It never blocks.
// After Close it returns domain.ErrChannelClosed.
func (q *Queue) Send(source string) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return domain.ErrChannelClosed
	}

	q.pending = append(q.pending, domain.Trigger{
		Source:     source,
		EnqueuedAt: q.now(),
	})
	q.mu.Unlock()

	q.notify()

	return nil
}

// Receive returns the oldest pending trigger, waiting until one is available.
// Once the queue is closed and drained it returns domain.ErrChannelClosed.
// A done ctx wins over pending triggers.
// It must only be called from a single goroutine.
func (q *Queue) Receive(ctx context.Context) (domain.Trigger, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Trigger{}, err
		}

		q.mu.Lock()

		if len(q.pending) > 0 {
			trigger := q.pending[0]
			q.pending[0] = domain.Trigger{}
			q.pending = q.pending[1:]
			q.mu.Unlock()

			return trigger, nil
		}

		if q.closed {
			q.mu.Unlock()

			return domain.Trigger{}, domain.ErrChannelClosed
		}

		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return domain.Trigger{}, ctx.Err()
		case <-q.ready:
		}
	}
}

// Len returns the number of triggers waiting to be received.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}

// Close stops accepting triggers. Already accepted triggers are still delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.notify()
}

func (q *Queue) notify() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
