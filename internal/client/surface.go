package client

import (
	"fmt"
	"sync"

	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// Surface is the client-side proxy for a wl_surface object. Requests
// queue local state (via objtab.SurfaceState) until Commit publishes it,
// matching the double-buffered semantics real surfaces use: attach and
// damage take effect only on the next commit, never immediately.
type Surface struct {
	client *Client
	id     uint32
	state  *objtab.SurfaceState

	mu sync.Mutex
	// frameCallbacks maps an outstanding frame callback's object id to
	// the handler registered via Frame, invoked when its done event
	// arrives.
	frameCallbacks map[uint32]func(callbackData uint32)
}

// Attach queues a buffer object to become visible on the next Commit.
func (s *Surface) Attach(bufferID uint32, x, y int32) error {
	if !s.state.Attach(bufferID) {
		return fmt.Errorf("client: attach on destroyed surface %d", s.id)
	}
	return s.client.send(s.id, proto.OpSurfaceAttach, wire.NewObjectID(bufferID), wire.NewInt32(x), wire.NewInt32(y))
}

// Damage queues a damage rectangle, in surface-local coordinates.
func (s *Surface) Damage(x, y, w, h int32) error {
	if !s.state.Damage(objtab.DamageRect{X: x, Y: y, Width: w, Height: h}) {
		return fmt.Errorf("client: damage on destroyed surface %d", s.id)
	}
	return s.client.send(s.id, proto.OpSurfaceDamage, wire.NewInt32(x), wire.NewInt32(y), wire.NewInt32(w), wire.NewInt32(h))
}

// Frame requests a one-shot callback fired the next time this surface's
// committed content is processed into a new frame. onDone is invoked
// from the dispatch goroutine with the server-supplied timestamp.
func (s *Surface) Frame(onDone func(callbackData uint32)) error {
	id, err := s.client.allocID()
	if err != nil {
		return err
	}
	rec := &objtab.Record{ID: id, Interface: proto.WlCallback, Kind: objtab.KindCallback, Callback: &objtab.CallbackState{}}
	if err := s.client.table.Insert(rec); err != nil {
		return fmt.Errorf("client: frame: %w", err)
	}

	s.mu.Lock()
	if s.frameCallbacks == nil {
		s.frameCallbacks = make(map[uint32]func(uint32))
	}
	s.frameCallbacks[id] = onDone
	s.mu.Unlock()

	if err := s.client.send(s.id, proto.OpSurfaceFrame, wire.NewID(id)); err != nil {
		return fmt.Errorf("client: frame: %w", err)
	}

	s.client.mu.Lock()
	if s.client.frameHooks == nil {
		s.client.frameHooks = make(map[uint32]*Surface)
	}
	s.client.frameHooks[id] = s
	s.client.mu.Unlock()
	return nil
}

// Commit publishes every request queued since the last commit.
func (s *Surface) Commit() error {
	if _, _, ok := s.state.Commit(); !ok {
		return fmt.Errorf("client: commit on destroyed surface %d", s.id)
	}
	return s.client.send(s.id, proto.OpSurfaceCommit)
}

// Destroy releases the surface. It is legal from any state.
func (s *Surface) Destroy() error {
	s.state.Destroy()
	if err := s.client.send(s.id, proto.OpSurfaceDestroy); err != nil {
		return fmt.Errorf("client: destroy surface: %w", err)
	}
	s.client.table.Remove(s.id)
	return nil
}

// Region is the client-side proxy for a wl_region.
type Region struct {
	client *Client
	id     uint32
}

// Add accumulates a rectangle into the region.
func (r *Region) Add(x, y, w, h int32) error {
	return r.client.send(r.id, proto.OpRegionAdd, wire.NewInt32(x), wire.NewInt32(y), wire.NewInt32(w), wire.NewInt32(h))
}

// Subtract removes a rectangle from the region.
func (r *Region) Subtract(x, y, w, h int32) error {
	return r.client.send(r.id, proto.OpRegionSubtract, wire.NewInt32(x), wire.NewInt32(y), wire.NewInt32(w), wire.NewInt32(h))
}

// Destroy releases the region.
func (r *Region) Destroy() error {
	if err := r.client.send(r.id, proto.OpRegionDestroy); err != nil {
		return fmt.Errorf("client: destroy region: %w", err)
	}
	r.client.table.Remove(r.id)
	return nil
}
