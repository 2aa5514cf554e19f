package ledger

import (
	"sync"
	"time"
)

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is one user-visible message produced by an operation.
type Notification struct {
	Kind    NotificationKind
	Message string
	At      time.Time
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// DefaultQueueSize is the capacity used by NewQueue when size <= 0.
const DefaultQueueSize = 32

// Queue is a bounded notification queue drained by the presentation layer.
// Notify never blocks: when full, the oldest pending notification is dropped.
type Queue struct {
	mu      sync.Mutex
	pending []Notification
	size    int
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{size: size}
}

func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == q.size {
		q.pending = q.pending[1:]
	}
	q.pending = append(q.pending, n)
}

// Drain returns and clears the pending notifications in arrival order.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}
