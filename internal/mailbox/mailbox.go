// Package mailbox provides an unbounded FIFO that producers can fill without
// ever blocking, drained by a single consumer goroutine.
package mailbox

import "sync"

// Mailbox is an unbounded, multi-producer single-consumer queue.
//
// Put never blocks. The consumer waits on Ready and then calls Drain, which
// returns everything queued so far in insertion order.
type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	ready  chan struct{}
	closed bool
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{ready: make(chan struct{}, 1)}
}

// Put appends v. Returns false if the mailbox has been closed.
func (m *Mailbox[T]) Put(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, v)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
		// Already signalled
	}
	return true
}

// Ready is signalled at least once after every Put.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.ready
}

// Drain removes and returns all queued items.
func (m *Mailbox[T]) Drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items
	m.items = nil
	return items
}

// Len returns the number of queued items.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Discard removes up to n of the oldest queued items.
func (m *Mailbox[T]) Discard(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n = min(max(n, 0), len(m.items))
	m.items = m.items[n:]
}

// Close drops queued items and rejects further Puts.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.items = nil
}
