package server

import (
	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// AddCompositorGlobal advertises a wl_compositor global at the given
// version, wiring bind requests to insert a KindCompositor record in
// the binding client's object table. Returns the allocated global name.
func (s *Server) AddCompositorGlobal(version uint32) uint32 {
	return s.AddGlobal(proto.WlCompositor, version, func(cs *ClientState, id uint32, clientVersion uint32) error {
		return cs.table.Insert(&objtab.Record{ID: id, Interface: proto.WlCompositor, Kind: objtab.KindCompositor, Version: clientVersion})
	})
}

// AddGenericGlobal advertises a global for an extension interface the
// core has no typed handler for. Bound objects get KindGeneric records;
// their requests are decoded per the descriptor and delivered to the
// OnGenericRequest hook.
func (s *Server) AddGenericGlobal(iface *proto.InterfaceDescriptor, version uint32) uint32 {
	return s.AddGlobal(iface, version, func(cs *ClientState, id uint32, clientVersion uint32) error {
		return cs.table.Insert(&objtab.Record{ID: id, Interface: iface, Kind: objtab.KindGeneric, Version: clientVersion})
	})
}

func (cs *ClientState) handleCompositorRequest(msg wire.Message) error {
	switch msg.Opcode {
	case proto.OpCompositorCreateSurface:
		return cs.createSurface(msg.Args[0].Uint32)
	case proto.OpCompositorCreateRegion:
		id := msg.Args[0].Uint32
		if err := cs.table.Insert(&objtab.Record{ID: id, Interface: proto.WlRegion, Kind: objtab.KindRegion}); err != nil {
			return cs.protocolError(id, errInvalidObject, "create_region: id already in use")
		}
		return nil
	}
	return nil
}

func (cs *ClientState) createSurface(id uint32) error {
	state := &objtab.SurfaceState{}
	if err := cs.table.Insert(&objtab.Record{ID: id, Interface: proto.WlSurface, Kind: objtab.KindSurface, Surface: state}); err != nil {
		return cs.protocolError(id, errInvalidObject, "create_surface: id already in use")
	}

	cs.mu.Lock()
	cs.surfaces[id] = &serverSurface{id: id, state: state}
	cs.mu.Unlock()

	if hook := cs.server.hooks.OnSurfaceCreated; hook != nil {
		hook(cs, id)
	}
	return nil
}
