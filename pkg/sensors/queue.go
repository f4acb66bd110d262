package sensors

import (
	"sync"

	"github.com/aretw0/fernspiel/pkg/domain"
)

// DefaultQueueSize bounds the number of pending remote inputs.
const DefaultQueueSize = 16

// Queue is an input source fed from outside the tick loop (remote dialing, keyboard).
// Push never blocks; inputs beyond the capacity are dropped.
type Queue struct {
	mu      sync.Mutex
	pending []domain.Input
	size    int
}

// NewQueue creates a queue holding at most size pending inputs.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{size: size}
}

// Push enqueues an input. It reports false if the queue is full.
func (q *Queue) Push(in domain.Input) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) >= q.size {
		return false
	}
	q.pending = append(q.pending, in)
	return true
}

func (q *Queue) Poll() (domain.Input, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return "", false
	}
	in := q.pending[0]
	q.pending = q.pending[1:]
	return in, true
}

// Len returns the number of pending inputs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
