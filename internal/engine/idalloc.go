package engine

import "sync/atomic"

// IDAllocator issues unique, strictly increasing order identifiers.
// Safe for concurrent callers; an id is never reused within a process.
// The first id issued is 1 so the zero value stays free as "unassigned".
type IDAllocator struct {
	last atomic.Uint64
}

// NewIDAllocator creates a new IDAllocator.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns the next order id.
func (a *IDAllocator) Next() uint64 {
	return a.last.Add(1)
}
