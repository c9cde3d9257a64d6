// Package buffer provides the bounded, newest-first live item buffer
// shared by the per-scan stream client and the reconciled view.
package buffer

import "sync"

// Ring is a thread-safe bounded buffer ordered newest-first. Push
// prepends; once the buffer is full the oldest item is evicted. Length
// never exceeds the configured capacity.
type Ring[T any] struct {
	mu       sync.Mutex
	buf      []T
	head     int // position of the newest item
	count    int
	capacity int

	totalPushed  int64
	totalEvicted int64
}

// NewRing creates a ring with the given capacity.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
	}
}

// Push adds an item at the front, evicting the oldest item if the
// buffer is already at capacity.
func (r *Ring[T]) Push(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.head = (r.head - 1 + r.capacity) % r.capacity
	r.buf[r.head] = item
	if r.count < r.capacity {
		r.count++
	} else {
		r.totalEvicted++
	}
	r.totalPushed++
}

// Items returns a snapshot of the buffer contents, newest first.
func (r *Ring[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%r.capacity]
	}
	return out
}

// Clear discards all buffered items.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.head = 0
	r.count = 0
}

// Len returns the current number of buffered items.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return r.capacity
}

// Stats returns cumulative push/evict counts.
func (r *Ring[T]) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Count:        r.count,
		Capacity:     r.capacity,
		TotalPushed:  r.totalPushed,
		TotalEvicted: r.totalEvicted,
	}
}

// Stats describes a ring buffer's state.
type Stats struct {
	Count        int
	Capacity     int
	TotalPushed  int64
	TotalEvicted int64
}
