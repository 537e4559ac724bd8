package concurrent

import "sync"

// Mailbox hands values from one goroutine to another. The producer pushes at
// any time; the consumer drains everything pushed so far in one step. Drain
// swaps two buffers under the lock, so the returned slice stays valid until the
// next Drain call.
type Mailbox[T any] struct {
	mu    sync.Mutex
	write []T
	read  []T
	limit int
	drops uint64
}

// NewMailbox creates a mailbox. A positive limit bounds the number of pending
// values; pushes beyond it are dropped and counted.
func NewMailbox[T any](limit int) *Mailbox[T] {
	return &Mailbox[T]{limit: limit}
}

// Push enqueues v and reports whether it was accepted.
func (m *Mailbox[T]) Push(v T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit > 0 && len(m.write) >= m.limit {
		m.drops++
		return false
	}
	m.write = append(m.write, v)
	return true
}

// PushAll enqueues values in order and returns how many were accepted.
func (m *Mailbox[T]) PushAll(values ...T) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(values)
	if m.limit > 0 {
		n = min(n, m.limit-len(m.write))
		if n < 0 {
			n = 0
		}
		m.drops += uint64(len(values) - n)
	}
	m.write = append(m.write, values[:n]...)
	return n
}

// Drain returns every pending value in push order and clears the mailbox.
func (m *Mailbox[T]) Drain() []T {
	m.mu.Lock()
	clear(m.read)
	m.read, m.write = m.write, m.read[:0]
	m.mu.Unlock()
	return m.read
}

// Len returns the number of pending values.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.write)
}

// Dropped returns how many values were rejected by the limit.
func (m *Mailbox[T]) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drops
}

// Reset discards pending values.
func (m *Mailbox[T]) Reset() {
	m.mu.Lock()
	clear(m.write)
	m.write = m.write[:0]
	m.mu.Unlock()
}
