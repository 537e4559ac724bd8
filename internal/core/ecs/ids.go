package ecs

import "sync/atomic"

// IDAllocator hands out monotonically increasing entity ids. Ids received from
// an authoritative peer are reserved so that local allocations never collide
// with them.
type IDAllocator struct {
	next atomic.Uint64
}

// NewIDAllocator starts allocation at first.
func NewIDAllocator(first EntityID) *IDAllocator {
	a := &IDAllocator{}
	a.next.Store(uint64(first))
	return a
}

// Next returns a fresh id.
func (a *IDAllocator) Next() EntityID {
	return EntityID(a.next.Add(1) - 1)
}

// Reserve moves the counter past id when id is at or above it.
func (a *IDAllocator) Reserve(id EntityID) {
	for {
		cur := a.next.Load()
		if uint64(id) < cur {
			return
		}
		if a.next.CompareAndSwap(cur, uint64(id)+1) {
			return
		}
	}
}

// Peek returns the id the next call to Next would return.
func (a *IDAllocator) Peek() EntityID {
	return EntityID(a.next.Load())
}

// Reset restarts allocation at first.
func (a *IDAllocator) Reset(first EntityID) {
	a.next.Store(uint64(first))
}
