package concurrent

import "sync/atomic"

// SPSCRing is a lock-free single-producer/single-consumer ring buffer
// in the io_uring submission/completion ring style: a power-of-two
// capacity, atomic head/tail cursors, and the acquire/release ordering
// needed so the consumer never observes a slot write before the
// producer's publishing store. It is not safe for more than one
// producer or more than one consumer.
type SPSCRing[T any] struct {
	mask uint64
	buf  []T
	head atomic.Uint64 // next slot the consumer will read
	tail atomic.Uint64 // next slot the producer will write
}

// NewSPSCRing returns a ring with capacity rounded up to the next power
// of two (minimum 2, so head==tail is unambiguous between empty and full
// only via the size check below, not via wraparound aliasing).
func NewSPSCRing[T any](capacity int) *SPSCRing[T] {
	n := nextPowerOfTwo(capacity)
	return &SPSCRing[T]{mask: uint64(n - 1), buf: make([]T, n)}
}

func nextPowerOfTwo(n int) int {
	if n < 2 {
		return 2
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// TryPush attempts to enqueue v, returning false if the ring is full.
// Called only by the single producer goroutine.
func (r *SPSCRing[T]) TryPush(v T) bool {
	tail := r.tail.Load()
	head := r.head.Load() // acquire: see consumer's latest release
	if tail-head >= uint64(len(r.buf)) {
		return false
	}
	r.buf[tail&r.mask] = v
	storeFence()
	r.tail.Store(tail + 1) // release: publish the write before advancing tail
	return true
}

// TryPop attempts to dequeue a value, returning false if the ring is
// empty. Called only by the single consumer goroutine.
func (r *SPSCRing[T]) TryPop() (T, bool) {
	head := r.head.Load()
	tail := r.tail.Load() // acquire: see producer's latest release
	var zero T
	if head == tail {
		return zero, false
	}
	v := r.buf[head&r.mask]
	r.buf[head&r.mask] = zero
	r.head.Store(head + 1) // release: free the slot before advancing head
	return v, true
}

// Len returns an instantaneous occupancy snapshot; racy by construction
// against a concurrently running producer/consumer, useful only for
// metrics and tests.
func (r *SPSCRing[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the ring's fixed capacity.
func (r *SPSCRing[T]) Cap() int {
	return len(r.buf)
}
