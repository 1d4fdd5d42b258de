package client

import (
	"fmt"

	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// ProtocolError is delivered by the server via wl_display.error when a
// request violated the protocol (bad argument, object already destroyed,
// and similar fatal conditions). Once received the connection is
// considered unusable; the server is expected to close it shortly after.
type ProtocolError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("client: protocol error on object %d code %d: %s", e.ObjectID, e.Code, e.Message)
}

// SetProtocolErrorHandler installs fn, which is invoked from the dispatch
// goroutine when the server sends wl_display.error. If no handler is
// set, DispatchOne returns the
// *ProtocolError instead so Run terminates with it.
func (c *Client) SetProtocolErrorHandler(fn func(*ProtocolError)) {
	c.mu.Lock()
	c.onProtocolError = fn
	c.mu.Unlock()
}

func (c *Client) handleDisplayEvent(rec *objtab.Record, msg wire.Message) error {
	switch msg.Opcode {
	case proto.OpDisplayError:
		pe := &ProtocolError{
			ObjectID: msg.Args[0].Uint32,
			Code:     msg.Args[1].Uint32,
			Message:  msg.Args[2].String,
		}
		c.mu.Lock()
		handler := c.onProtocolError
		c.mu.Unlock()
		if handler != nil {
			handler(pe)
			return nil
		}
		return pe
	case proto.OpDisplayDeleteID:
		c.table.Remove(msg.Args[0].Uint32)
	}
	return nil
}
