package concurrent

import "sync/atomic"

// RefCount is an atomic, one-shot-destructor reference count for objects
// shared across the client/server dispatch goroutines — e.g. a committed
// buffer still referenced by an in-flight frame callback after its
// surface has released it. The destructor fires exactly once, on the
// release that drops the count from 1 to 0, no matter how many
// goroutines race to call Release.
type RefCount struct {
	n       atomic.Int64
	destroy func()
	fired   atomic.Bool
}

// NewRefCount returns a RefCount starting at 1 with the given destructor.
// destroy must be nil-safe to omit (a RefCount with no destructor simply
// tracks the count).
func NewRefCount(destroy func()) *RefCount {
	r := &RefCount{destroy: destroy}
	r.n.Store(1)
	return r
}

// Acquire increments the count. It must be called before handing a
// reference to another owner; calling it after the count has reached
// zero is a use-after-free bug in the caller and panics.
func (r *RefCount) Acquire() {
	if r.n.Add(1) <= 1 {
		panic("concurrent: Acquire on a RefCount that already reached zero")
	}
}

// Release decrements the count, running the destructor exactly once if
// this call drops it to zero. Returns true on the call that fired the
// destructor.
func (r *RefCount) Release() bool {
	n := r.n.Add(-1)
	if n > 0 {
		return false
	}
	if n < 0 {
		panic("concurrent: Release called more times than Acquire")
	}
	if r.fired.CompareAndSwap(false, true) {
		if r.destroy != nil {
			r.destroy()
		}
		return true
	}
	return false
}

// Count returns the current reference count.
func (r *RefCount) Count() int64 {
	return r.n.Load()
}
