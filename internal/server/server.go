// Package server implements the server (compositor) side of the
// connection: accepting clients, advertising globals, and driving the
// surface commit lifecycle.
package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/ehrlich-b/go-wl/internal/concurrent"
	"github.com/ehrlich-b/go-wl/internal/conn"
	"github.com/ehrlich-b/go-wl/internal/interfaces"
	"github.com/ehrlich-b/go-wl/internal/logging"
	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// Global is one name-bindable interface the server advertises to every
// connected client.
type Global struct {
	Name      uint32
	Interface *proto.InterfaceDescriptor
	Version   uint32
	// Bind is invoked when a client requests this global; it receives
	// the client-assigned object ID and the ClientState that bound it.
	// A non-nil error (a duplicate id, typically) is reported to the
	// client as wl_display.error and tears the connection down.
	Bind func(cs *ClientState, id uint32, version uint32) error
}

// Hooks are lifecycle callbacks a compositor implementation supplies.
// Any left nil falls back to a no-op default, except
// ScheduleFrameCallback, whose default immediately sends done on the
// frame callback (see surface.go) rather than doing nothing, matching the "immediate
// presentation" fallback behavior a minimal compositor needs to stay
// live without a real renderer.
type Hooks struct {
	OnClientConnected    func(cs *ClientState)
	OnClientDisconnected func(cs *ClientState)
	OnSurfaceCreated     func(cs *ClientState, surfaceID uint32)
	OnSurfaceDestroyed   func(cs *ClientState, surfaceID uint32)
	OnSurfaceCommit      func(cs *ClientState, surfaceID uint32, buffer uint32, damage []objtab.DamageRect)
	ScheduleFrameCallback func(cs *ClientState, surfaceID uint32, callbackID uint32)
	// OnGenericRequest receives requests addressed to objects the core
	// has no typed handler for — extension interfaces bound through a
	// catalog-loaded descriptor. Arguments arrive fully decoded,
	// including any fds pulled from the connection's ancillary queue.
	OnGenericRequest func(cs *ClientState, objectID uint32, opcode uint16, args []wire.Arg)
}

// Server listens for client connections and advertises a fixed set of
// globals to each one. The global name space is allocated centrally
// here (not per connection), so two clients never see the same global
// advertised under different names for the same server-side object.
type Server struct {
	logger   *logging.Logger
	catalog  *proto.Catalog
	hooks    Hooks
	observer interfaces.Observer

	mu       sync.Mutex
	globals  map[uint32]*Global
	nextName uint32

	clients *concurrent.Registry[uint32, *ClientState]
}

// Options configures a new Server.
type Options struct {
	Logger   *logging.Logger
	Catalog  *proto.Catalog
	Hooks    Hooks
	Observer interfaces.Observer // nil disables instrumentation
}

// New constructs a Server with no globals advertised yet; call AddGlobal
// before Listen/AcceptLoop so the first client sees them.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = proto.NewCatalog()
	}
	return &Server{
		logger:   logger,
		catalog:  catalog,
		hooks:    opts.Hooks,
		observer: opts.Observer,
		globals:  make(map[uint32]*Global),
		nextName: 1,
		clients:  concurrent.NewRegistry[uint32, *ClientState](),
	}
}

// AddGlobal advertises a new global under a freshly allocated name,
// returning that name. Per the centralized-allocation design, names are
// never reused even after RemoveGlobal, so a stale binding attempt from
// a slow client always misses rather than silently binding a newer
// unrelated global that reused the same name.
func (s *Server) AddGlobal(iface *proto.InterfaceDescriptor, version uint32, bind func(cs *ClientState, id uint32, version uint32) error) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := s.nextName
	s.nextName++
	s.globals[name] = &Global{Name: name, Interface: iface, Version: version, Bind: bind}
	return name
}

// AddGlobalFromCatalog advertises an interface resolved by name through
// the server's catalog — the path extension interfaces loaded from a
// YAML catalog file take. Bound objects get generic records; their
// requests surface through the OnGenericRequest hook.
func (s *Server) AddGlobalFromCatalog(ifaceName string, version uint32) (uint32, error) {
	d := s.catalog.Lookup(ifaceName)
	if d == nil {
		return 0, fmt.Errorf("server: interface %q not in catalog", ifaceName)
	}
	if version == 0 || version > d.Version {
		return 0, fmt.Errorf("server: interface %q version %d not in [1, %d]", ifaceName, version, d.Version)
	}
	return s.AddGenericGlobal(d, version), nil
}

// RemoveGlobal stops advertising the global under name. Already-bound
// client objects for it are unaffected; only later wl_registry.global
// advertisements (to registries created after the call) stop listing
// it. RemoveGlobal sends no global_remove event itself: broadcasting is
// the caller's responsibility via BroadcastGlobalRemove, kept separate
// so a server can batch removals before flushing events.
func (s *Server) RemoveGlobal(name uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.globals, name)
}

// Globals returns a snapshot of every currently advertised global.
func (s *Server) Globals() []*Global {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Global, 0, len(s.globals))
	for _, g := range s.globals {
		out = append(out, g)
	}
	return out
}

// BroadcastGlobalRemove sends wl_registry.global_remove for name to
// every connected client that has a live registry object.
func (s *Server) BroadcastGlobalRemove(name uint32) {
	for _, cs := range s.clients.Values() {
		cs.sendGlobalRemove(name)
	}
}

// Listen binds a socket at path and returns a ready-to-run *Listening.
func (s *Server) Listen(path string) (*Listening, error) {
	l, err := conn.Listen(path, s.logger)
	if err != nil {
		return nil, err
	}
	return &Listening{server: s, listener: l}, nil
}

// AttachClient registers an already-connected socket as a client
// without going through a Listener — used by internal/testsupport to
// splice a client directly onto a socketpair end.
func (s *Server) AttachClient(c *conn.Conn) *ClientState {
	return s.newClientState(c)
}

// ServeOne runs cs's dispatch loop until its connection closes. It is
// the context-free twin of serveClient, for callers (tests) that manage
// their own goroutine lifetime without a cancellable context.
func (s *Server) ServeOne(cs *ClientState) {
	s.serveClient(context.Background(), cs)
}

// Listening is a bound server socket ready to accept clients.
type Listening struct {
	server   *Server
	listener *conn.Listener
}

// Close stops listening.
func (l *Listening) Close() error { return l.listener.Close() }

// AcceptLoop accepts client connections until ctx is cancelled,
// spawning one goroutine per client to run its dispatch loop. It blocks
// until ctx is done or Accept returns a non-recoverable error.
func (l *Listening) AcceptLoop(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	acceptErr := make(chan error, 1)
	go func() {
		for {
			c, err := l.listener.Accept()
			if err != nil {
				acceptErr <- err
				return
			}
			cs := l.server.newClientState(c)
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.server.serveClient(ctx, cs)
			}()
		}
	}()

	select {
	case <-ctx.Done():
		_ = l.listener.Close()
		return ctx.Err()
	case err := <-acceptErr:
		return fmt.Errorf("server: accept loop: %w", err)
	}
}
