package objtab

import (
	"sync"

	"github.com/ehrlich-b/go-wl/internal/proto"
)

// Kind discriminates the handful of object roles the core understands.
// Unrecognized interfaces (server extensions bound through the YAML
// catalog) fall back to KindGeneric and carry no typed state of their
// own — dispatch still works, but lifecycle hooks don't fire for them.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindDisplay
	KindRegistry
	KindCallback
	KindCompositor
	KindSurface
	KindRegion
)

// SurfacePhase is the surface commit state machine from the commit
// lifecycle: Created and Attached both loop back to themselves or to
// Committed, and destroy is reachable from any phase.
type SurfacePhase uint8

const (
	SurfaceCreated SurfacePhase = iota
	SurfaceAttached
	SurfaceCommitted
	SurfaceDestroyed
)

// SurfaceState holds the mutable per-surface state a committed buffer
// attach accumulates between commits.
type SurfaceState struct {
	mu             sync.Mutex
	Phase          SurfacePhase
	PendingBuffer  uint32
	PendingDamage  []DamageRect
	OpaqueRegion   uint32
	InputRegion    uint32
	FrameCallbacks []uint32
}

// DamageRect is one damage rectangle queued by a surface.damage request.
type DamageRect struct {
	X, Y, Width, Height int32
}

// Attach transitions Created/Attached -> Attached, recording the pending
// buffer. Per the commit lifecycle, attach is legal from either state;
// it is not legal once the surface has moved to Destroyed.
func (s *SurfaceState) Attach(bufferID uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase == SurfaceDestroyed {
		return false
	}
	s.PendingBuffer = bufferID
	s.Phase = SurfaceAttached
	return true
}

// Damage appends a pending damage rectangle, valid in Created or Attached.
func (s *SurfaceState) Damage(r DamageRect) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase == SurfaceDestroyed {
		return false
	}
	s.PendingDamage = append(s.PendingDamage, r)
	return true
}

// Commit moves the surface to Committed, clearing pending state the way a
// real commit publishes and resets the double-buffered request queue.
// Commit from Created (no prior attach) is legal and simply has no
// visible effect beyond the phase transition.
func (s *SurfaceState) Commit() (buffer uint32, damage []DamageRect, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase == SurfaceDestroyed {
		return 0, nil, false
	}
	buffer, damage = s.PendingBuffer, s.PendingDamage
	s.PendingDamage = nil
	s.Phase = SurfaceCommitted
	return buffer, damage, true
}

// Destroy is reachable from any phase and is terminal.
func (s *SurfaceState) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Phase = SurfaceDestroyed
}

// CallbackState tracks whether a one-shot callback has already fired.
// A second done dispatch on the same callback object is a caller bug;
// Fire reports it by returning false instead of silently double-delivering.
type CallbackState struct {
	mu    sync.Mutex
	fired bool
}

// Fire marks the callback fired, returning false if it had already fired.
func (c *CallbackState) Fire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fired {
		return false
	}
	c.fired = true
	return true
}

// Record is one live entry in the object table: an ID, its interface
// descriptor, a role-specific state blob, and a destroy flag guarding
// against double-free.
type Record struct {
	ID        uint32
	Interface *proto.InterfaceDescriptor
	Kind      Kind
	Version   uint32

	mu        sync.Mutex
	destroyed bool

	Surface  *SurfaceState
	Callback *CallbackState
	// Data is a slot for server/client-specific associated state
	// (e.g. a *client.Registry) that the core
	// object table doesn't need to know the shape of.
	Data any
}

// MarkDestroyed flips the destroyed flag, returning false if it was
// already destroyed — the caller uses this to detect double-destroy.
func (r *Record) MarkDestroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return false
	}
	r.destroyed = true
	return true
}

// Destroyed reports the current destroy flag.
func (r *Record) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}
