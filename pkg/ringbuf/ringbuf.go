// Package ringbuf provides a bounded, concurrency-safe buffer that keeps the
// most recent items and drops the oldest when full.
package ringbuf

import "sync"

// Buffer holds at most Cap items of type T.
type Buffer[T any] struct {
	mu    sync.Mutex
	items []T
	start int
	size  int
	total int64
}

// New returns a Buffer with the given capacity. capacity must be positive.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		panic("ringbuf: capacity must be positive")
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Push appends v, evicting the oldest item when full.
func (b *Buffer[T]) Push(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total++
	if b.size < len(b.items) {
		b.items[(b.start+b.size)%len(b.items)] = v
		b.size++
		return
	}
	b.items[b.start] = v
	b.start = (b.start + 1) % len(b.items)
}

// Newest returns up to limit items, newest first. limit <= 0 means all.
func (b *Buffer[T]) Newest(limit int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]T, 0, n)
	for i := range n {
		idx := (b.start + b.size - 1 - i) % len(b.items)
		out = append(out, b.items[idx])
	}
	return out
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Cap returns the capacity.
func (b *Buffer[T]) Cap() int { return len(b.items) }

// Total returns how many items were ever pushed.
func (b *Buffer[T]) Total() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}
