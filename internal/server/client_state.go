package server

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ehrlich-b/go-wl/internal/conn"
	"github.com/ehrlich-b/go-wl/internal/logging"
	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// displayObjectID mirrors objtab.DisplayObjectID; the server doesn't
// seed a record for it in its object table (no client-creatable state
// hangs off wl_display), so requests against object 1 are special-cased
// in dispatch.go instead of going through a Record lookup.
const displayObjectID = objtab.DisplayObjectID

var clientIDSeq atomic.Uint64

// ClientState is the server's view of one connected client: its
// connection, object table (server-range IDs for anything the server
// originates, client-range for anything the client created), and a
// registry binding flag.
type ClientState struct {
	id     uint64
	conn   *conn.Conn
	server *Server
	table  *objtab.Table
	logger *logging.Logger

	mu             sync.Mutex
	registryIDs    map[uint32]bool // client object ids bound as wl_registry
	surfaces       map[uint32]*serverSurface
	dispatcher     *objtab.Dispatcher
}

type serverSurface struct {
	id    uint32
	state *objtab.SurfaceState
}

func (s *Server) newClientState(c *conn.Conn) *ClientState {
	id := clientIDSeq.Add(1)
	cs := &ClientState{
		id:          id,
		conn:        c,
		server:      s,
		table:       objtab.NewServerTable(),
		logger:      s.logger.WithScope(fmt.Sprintf("client %d", id)),
		registryIDs: make(map[uint32]bool),
		surfaces:    make(map[uint32]*serverSurface),
	}
	if s.observer != nil {
		c.SetObserver(s.observer)
	}
	cs.dispatcher = &objtab.Dispatcher{
		OnDrop: func(objectID uint32, opcode uint16, reason string) {
			s.logger.Warnf("server: dropping request object=%d opcode=%d: %s", objectID, opcode, reason)
			if s.observer != nil {
				s.observer.ObserveDrop(objectID, opcode)
			}
		},
	}
	s.clients.Set(uint32(cs.id), cs)
	if s.hooks.OnClientConnected != nil {
		s.hooks.OnClientConnected(cs)
	}
	return cs
}

// ID returns a server-assigned identifier unique for this process
// lifetime, for logging and lookup.
func (cs *ClientState) ID() uint64 { return cs.id }

func (cs *ClientState) send(objectID uint32, opcode uint16, args ...wire.Arg) error {
	return cs.conn.SendMessage(wire.Message{ObjectID: objectID, Opcode: opcode, Args: args})
}

func (cs *ClientState) sendGlobalRemove(name uint32) {
	cs.mu.Lock()
	ids := make([]uint32, 0, len(cs.registryIDs))
	for id := range cs.registryIDs {
		ids = append(ids, id)
	}
	cs.mu.Unlock()
	for _, id := range ids {
		_ = cs.send(id, proto.OpRegistryGlobalRemove, wire.NewUint32(name))
	}
}

func (cs *ClientState) close() {
	cs.server.clients.Delete(uint32(cs.id))
	_ = cs.conn.Close()
	if cs.server.hooks.OnClientDisconnected != nil {
		cs.server.hooks.OnClientDisconnected(cs)
	}
}
