package client

import (
	"fmt"
	"sync"

	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// Global is one entry advertised by the server's wl_registry.global event.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Registry tracks the set of globals the server has advertised, matching
// entries against the client's catalog so Bind can resolve an interface
// name to its descriptor.
type Registry struct {
	client *Client
	id     uint32

	mu      sync.Mutex
	globals map[uint32]Global

	// OnGlobal and OnGlobalRemove, if set, are invoked synchronously from
	// the dispatch goroutine as wl_registry events arrive — handlers must
	// not block or call back into the client's Run loop.
	OnGlobal       func(Global)
	OnGlobalRemove func(name uint32)
}

// GetRegistry requests a new wl_registry object, binding its events to
// the returned Registry. Only one registry per client is meaningful in
// this implementation; calling it twice creates two independent object
// table entries that each separately receive global events.
func (c *Client) GetRegistry() (*Registry, error) {
	id, err := c.allocID()
	if err != nil {
		return nil, err
	}
	reg := &Registry{client: c, id: id, globals: make(map[uint32]Global)}
	rec := &objtab.Record{ID: id, Interface: proto.WlRegistry, Kind: objtab.KindRegistry, Data: reg}
	if err := c.table.Insert(rec); err != nil {
		return nil, fmt.Errorf("client: get_registry: %w", err)
	}

	if err := c.send(objtab.DisplayObjectID, proto.OpDisplayGetRegistry, wire.NewID(id)); err != nil {
		return nil, fmt.Errorf("client: get_registry: %w", err)
	}
	c.registry = reg
	return reg, nil
}

// Globals returns a snapshot of every global currently advertised.
func (r *Registry) Globals() []Global {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Global, 0, len(r.globals))
	for _, g := range r.globals {
		out = append(out, g)
	}
	return out
}

// Find returns an advertised global with the given interface name, or
// ok=false if none has been seen yet. When several globals share the
// interface name, which of them is returned is not defined.
func (r *Registry) Find(iface string) (Global, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.globals {
		if g.Interface == iface {
			return g, true
		}
	}
	return Global{}, false
}

// Bind requests the server bind global g to a freshly allocated object
// ID and returns that ID. If the client's catalog knows the interface,
// a generic record is installed so events for the bound object resolve;
// kind-specific wrappers (Compositor, ...) replace it with their own
// typed Record at the returned ID.
func (r *Registry) Bind(g Global) (uint32, error) {
	id, err := r.client.allocID()
	if err != nil {
		return 0, err
	}
	if d := r.client.catalog.Lookup(g.Interface); d != nil {
		if err := r.client.table.Insert(&objtab.Record{ID: id, Interface: d, Kind: objtab.KindGeneric, Version: g.Version}); err != nil {
			return 0, fmt.Errorf("client: bind %s: %w", g.Interface, err)
		}
	}
	if err := r.client.send(r.id, proto.OpRegistryBind,
		wire.NewUint32(g.Name), wire.NewString(g.Interface), wire.NewUint32(g.Version), wire.NewID(id)); err != nil {
		return 0, fmt.Errorf("client: bind %s: %w", g.Interface, err)
	}
	if r.client.observer != nil {
		r.client.observer.ObserveBind(g.Interface, g.Version)
	}
	return id, nil
}

func (c *Client) handleRegistryEvent(rec *objtab.Record, msg wire.Message) error {
	reg, _ := rec.Data.(*Registry)
	if reg == nil {
		return nil
	}
	switch msg.Opcode {
	case proto.OpRegistryGlobal:
		g := Global{
			Name:      msg.Args[0].Uint32,
			Interface: msg.Args[1].String,
			Version:   msg.Args[2].Uint32,
		}
		reg.mu.Lock()
		reg.globals[g.Name] = g
		reg.mu.Unlock()
		if reg.OnGlobal != nil {
			reg.OnGlobal(g)
		}
	case proto.OpRegistryGlobalRemove:
		name := msg.Args[0].Uint32
		reg.mu.Lock()
		delete(reg.globals, name)
		reg.mu.Unlock()
		if reg.OnGlobalRemove != nil {
			reg.OnGlobalRemove(name)
		}
	}
	return nil
}
