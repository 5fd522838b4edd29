package exchangev1

import "sync/atomic"

// IDAllocator is the process-wide source of order and execution ids: two
// monotonic 64-bit counters, never reused within a process lifetime. It is
// shared by every book of an exchange, so it must stay safe to call from
// whichever goroutine owns a given book.
type IDAllocator struct {
	orderID     atomic.Uint64
	executionID atomic.Uint64
}

// NewIDAllocator creates an allocator with both sequences starting at 0.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// NextOrderID returns the next order id.
func (a *IDAllocator) NextOrderID() uint64 {
	return a.orderID.Add(1) - 1
}

// NextExecutionID returns the next execution id.
func (a *IDAllocator) NextExecutionID() uint64 {
	return a.executionID.Add(1) - 1
}

// EnsureOrderIDAtLeast advances the order-id sequence so the next allocation
// returns at least next. Used when restoring books from a snapshot.
func (a *IDAllocator) EnsureOrderIDAtLeast(next uint64) {
	for {
		current := a.orderID.Load()
		if current >= next {
			return
		}
		if a.orderID.CompareAndSwap(current, next) {
			return
		}
	}
}

// EnsureExecutionIDAtLeast advances the execution-id sequence so the next
// allocation returns at least next.
func (a *IDAllocator) EnsureExecutionIDAtLeast(next uint64) {
	for {
		current := a.executionID.Load()
		if current >= next {
			return
		}
		if a.executionID.CompareAndSwap(current, next) {
			return
		}
	}
}
