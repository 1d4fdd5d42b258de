// Package client implements the client side of the connection: object
// allocation, request encoding, and dispatch of incoming events onto the
// object table built in internal/objtab.
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/ehrlich-b/go-wl/internal/conn"
	"github.com/ehrlich-b/go-wl/internal/interfaces"
	"github.com/ehrlich-b/go-wl/internal/logging"
	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// Client is one connection to a Wayland server. All requests go through
// its object table's allocator, so object IDs are always issued in
// ascending order starting just past the display's reserved ID 1.
type Client struct {
	conn       *conn.Conn
	table      *objtab.Table
	catalog    *proto.Catalog
	logger     *logging.Logger
	observer   interfaces.Observer
	dispatcher *objtab.Dispatcher

	mu         sync.Mutex
	syncing    map[uint32]chan struct{}    // callback object id -> done signal
	frameHooks map[uint32]*Surface         // callback object id -> owning surface

	registry        *Registry
	onProtocolError func(*ProtocolError)
}

// Options configures a new Client.
type Options struct {
	Logger   *logging.Logger
	Catalog  *proto.Catalog      // nil uses the builtin catalog
	Observer interfaces.Observer // nil disables instrumentation
	Strict   bool                // treat unresolvable events as fatal instead of dropping
}

// Connect dials the Wayland socket resolved from the environment (or an
// explicit path if nonempty) and returns a ready Client. Call Run in a
// goroutine to begin dispatching incoming events.
func Connect(path string, opts Options) (*Client, error) {
	if path == "" {
		var err error
		path, err = conn.DisplaySocketPath()
		if err != nil {
			return nil, fmt.Errorf("client: %w", err)
		}
	}
	c, err := conn.Dial(path, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	return New(c, opts), nil
}

// New wraps an already-connected conn.Conn as a Client — used directly
// by tests and by internal/testsupport, which splices a Client onto one
// end of a socketpair instead of dialing a real listener.
func New(c *conn.Conn, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = proto.NewCatalog()
	}
	cl := &Client{
		conn:     c,
		table:    objtab.NewClientTable(),
		catalog:  catalog,
		logger:   logger,
		observer: opts.Observer,
		syncing:  make(map[uint32]chan struct{}),
	}
	if opts.Observer != nil {
		c.SetObserver(opts.Observer)
	}
	cl.dispatcher = &objtab.Dispatcher{
		Strict: opts.Strict,
		OnDrop: func(objectID uint32, opcode uint16, reason string) {
			logger.Warnf("client: dropping event object=%d opcode=%d: %s", objectID, opcode, reason)
			if cl.observer != nil {
				cl.observer.ObserveDrop(objectID, opcode)
			}
		},
	}
	return cl
}

// Display returns the always-present display object ID (1).
func (c *Client) Display() uint32 { return objtab.DisplayObjectID }

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// send encodes and writes a request for objectID/opcode.
func (c *Client) send(objectID uint32, opcode uint16, args ...wire.Arg) error {
	return c.conn.SendMessage(wire.Message{ObjectID: objectID, Opcode: opcode, Args: args})
}

// allocID reserves the next client-range object ID for a new_id
// argument. Exhaustion of the 32-bit range is terminal for the
// connection; a fresh connection starts a fresh range.
func (c *Client) allocID() (uint32, error) {
	id, err := c.table.Alloc.Alloc()
	if err != nil {
		return 0, fmt.Errorf("client: %w", err)
	}
	return id, nil
}

// Run reads and dispatches events until ctx is cancelled or the
// connection closes. It is the client's single reader goroutine; all
// event handling happens here to keep callback ordering deterministic —
// callers must not call DispatchOne concurrently with Run.
func (c *Client) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.DispatchOne(); err != nil {
			return err
		}
	}
}

// DispatchOne reads and handles exactly one incoming event.
func (c *Client) DispatchOne() error {
	h, err := c.conn.PeekHeader()
	if err != nil {
		return err
	}
	rec, sig, ok := c.dispatcher.ResolveEvent(c.table, h.ObjectID, h.Opcode)
	if !ok {
		if c.dispatcher.Strict {
			return fmt.Errorf("client: unresolvable event object=%d opcode=%d", h.ObjectID, h.Opcode)
		}
		// Drop: still must consume the body bytes (the header's own
		// length field frames them) and guard the fd queue against any
		// descriptors the dropped event carried.
		return c.conn.SkipBody(h)
	}
	msg, err := c.conn.ReceiveBody(h, sig)
	if err != nil {
		return err
	}
	return c.handleEvent(rec, msg)
}

func (c *Client) handleEvent(rec *objtab.Record, msg wire.Message) error {
	switch rec.Kind {
	case objtab.KindCallback:
		return c.handleCallbackDone(rec, msg)
	case objtab.KindRegistry:
		return c.handleRegistryEvent(rec, msg)
	case objtab.KindDisplay:
		return c.handleDisplayEvent(rec, msg)
	}
	return nil
}
