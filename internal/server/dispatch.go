package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// serveClient runs cs's dispatch loop until the connection closes or an
// unrecoverable error occurs, then tears down the client's state.
func (s *Server) serveClient(ctx context.Context, cs *ClientState) {
	defer cs.close()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := cs.dispatchOne(); err != nil {
			if !errors.Is(err, io.EOF) {
				cs.logger.Warnf("server: %v", err)
			}
			return
		}
	}
}

func (cs *ClientState) dispatchOne() error {
	h, err := cs.conn.PeekHeader()
	if err != nil {
		return err
	}

	if h.ObjectID == displayObjectID {
		sig, ok := displayRequestSignature(h.Opcode)
		if !ok {
			return cs.conn.SkipBody(h)
		}
		msg, err := cs.conn.ReceiveBody(h, sig)
		if err != nil {
			return err
		}
		return cs.handleDisplayRequest(msg)
	}

	rec, sig, ok := cs.dispatcher.ResolveRequest(cs.table, h.ObjectID, h.Opcode)
	if !ok {
		return cs.conn.SkipBody(h)
	}
	msg, err := cs.conn.ReceiveBody(h, sig)
	if err != nil {
		return err
	}
	return cs.handleRequest(rec, msg)
}

func displayRequestSignature(opcode uint16) (wire.Signature, bool) {
	sig, ok := proto.WlDisplay.Request(opcode)
	if !ok {
		return nil, false
	}
	return sig.ArgumentTypes, true
}

func (cs *ClientState) handleDisplayRequest(msg wire.Message) error {
	switch msg.Opcode {
	case proto.OpDisplaySync:
		callbackID := msg.Args[0].Uint32
		return cs.send(callbackID, proto.OpCallbackDone, wire.NewUint32(0))
	case proto.OpDisplayGetRegistry:
		regID := msg.Args[0].Uint32
		if err := cs.table.Insert(&objtab.Record{ID: regID, Interface: proto.WlRegistry, Kind: objtab.KindRegistry}); err != nil {
			return cs.protocolError(regID, errInvalidObject, "get_registry: id already in use")
		}
		cs.mu.Lock()
		cs.registryIDs[regID] = true
		cs.mu.Unlock()
		return cs.sendInitialGlobals(regID)
	}
	return nil
}

func (cs *ClientState) sendInitialGlobals(registryID uint32) error {
	for _, g := range cs.server.Globals() {
		if err := cs.send(registryID, proto.OpRegistryGlobal,
			wire.NewUint32(g.Name), wire.NewString(g.Interface.Name), wire.NewUint32(g.Version)); err != nil {
			return err
		}
	}
	return nil
}

func (cs *ClientState) handleRequest(rec *objtab.Record, msg wire.Message) error {
	switch rec.Kind {
	case objtab.KindRegistry:
		return cs.handleBind(msg)
	case objtab.KindCompositor:
		return cs.handleCompositorRequest(msg)
	case objtab.KindSurface:
		return cs.handleSurfaceRequest(rec, msg)
	case objtab.KindRegion:
		return nil // add/subtract/destroy carry no server-visible state yet
	case objtab.KindGeneric:
		if hook := cs.server.hooks.OnGenericRequest; hook != nil {
			hook(cs, rec.ID, msg.Opcode, msg.Args)
		}
		return nil
	}
	return nil
}

func (cs *ClientState) handleBind(msg wire.Message) error {
	name := msg.Args[0].Uint32
	ifaceName := msg.Args[1].String
	version := msg.Args[2].Uint32
	newID := msg.Args[3].Uint32

	for _, g := range cs.server.Globals() {
		if g.Name != name {
			continue
		}
		if ifaceName != g.Interface.Name {
			return cs.protocolError(newID, errInvalidObject, fmt.Sprintf("bind: global %d is %s, not %s", name, g.Interface.Name, ifaceName))
		}
		if version == 0 || version > g.Version {
			return cs.protocolError(newID, errInvalidObject, fmt.Sprintf("bind: %s version %d not in [1, %d]", ifaceName, version, g.Version))
		}
		if g.Bind != nil {
			if err := g.Bind(cs, newID, version); err != nil {
				return cs.protocolError(newID, errInvalidObject, fmt.Sprintf("bind: %s: %v", ifaceName, err))
			}
		}
		if obs := cs.server.observer; obs != nil {
			obs.ObserveBind(g.Interface.Name, version)
		}
		return nil
	}
	return cs.protocolError(newID, errInvalidObject, fmt.Sprintf("bind: unknown global name %d", name))
}

// protocolError reports a client protocol violation via wl_display.error
// and returns a terminal error so the dispatch loop tears the connection
// down — unlike an unknown opcode, a violated invariant (bad bind,
// reused object id) cannot be tolerated without corrupting object state.
func (cs *ClientState) protocolError(objectID uint32, code uint32, why string) error {
	_ = cs.send(displayObjectID, proto.OpDisplayError,
		wire.NewObjectID(objectID), wire.NewUint32(code), wire.NewString(why))
	return errors.New("server: " + why)
}

// wl_display error codes from the core protocol.
const (
	errInvalidObject = 0
	errInvalidMethod = 1
)
