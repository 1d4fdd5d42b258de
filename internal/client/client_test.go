package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	gowlconn "github.com/ehrlich-b/go-wl/internal/conn"
	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// fakeServer drives the peer end of a socketpair directly with raw wire
// messages, standing in for internal/server in tests that only exercise
// the client's half of the protocol.
type fakeServer struct {
	conn *gowlconn.Conn
}

func newPair(t *testing.T) (*Client, *fakeServer) {
	t.Helper()
	a, b, err := gowlconn.Socketpair(nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(); b.Close() })
	return New(a, Options{}), &fakeServer{conn: b}
}

func TestRoundtripCompletesOnCallbackDone(t *testing.T) {
	cl, srv := newPair(t)

	go func() {
		h, err := srv.conn.PeekHeader()
		require.NoError(t, err)
		require.Equal(t, objtab.DisplayObjectID, h.ObjectID)
		require.Equal(t, uint16(proto.OpDisplaySync), h.Opcode)
		msg, err := srv.conn.ReceiveBody(h, wire.Signature{wire.ArgNewID})
		require.NoError(t, err)
		callbackID := msg.Args[0].Uint32
		require.NoError(t, srv.conn.SendMessage(wire.Message{
			ObjectID: callbackID, Opcode: proto.OpCallbackDone, Args: []wire.Arg{wire.NewUint32(1)},
		}))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, cl.Roundtrip(ctx))
}

func TestSyncIsNonBlockingAndReturnsCallbackID(t *testing.T) {
	cl, srv := newPair(t)

	// Sync returns before any server response exists.
	first, err := cl.Sync()
	require.NoError(t, err)
	require.NotZero(t, first)

	second, err := cl.Sync()
	require.NoError(t, err)
	require.Greater(t, second, first, "each sync allocates a fresh callback id")

	// The server answers both; dispatch destroys each callback exactly once.
	go func() {
		for i := 0; i < 2; i++ {
			h, _ := srv.conn.PeekHeader()
			msg, _ := srv.conn.ReceiveBody(h, wire.Signature{wire.ArgNewID})
			_ = srv.conn.SendMessage(wire.Message{
				ObjectID: msg.Args[0].Uint32, Opcode: proto.OpCallbackDone, Args: []wire.Arg{wire.NewUint32(0)},
			})
		}
	}()
	require.NoError(t, cl.DispatchOne())
	require.NoError(t, cl.DispatchOne())
}

func TestRegistryEnumeratesGlobals(t *testing.T) {
	cl, srv := newPair(t)

	reg, err := cl.GetRegistry()
	require.NoError(t, err)

	go func() {
		h, err := srv.conn.PeekHeader()
		require.NoError(t, err)
		_, err = srv.conn.ReceiveBody(h, wire.Signature{wire.ArgNewID})
		require.NoError(t, err)

		require.NoError(t, srv.conn.SendMessage(wire.Message{
			ObjectID: reg.id, Opcode: proto.OpRegistryGlobal,
			Args: []wire.Arg{wire.NewUint32(1), wire.NewString("wl_compositor"), wire.NewUint32(6)},
		}))
		require.NoError(t, srv.conn.SendMessage(wire.Message{
			ObjectID: reg.id, Opcode: proto.OpRegistryGlobal,
			Args: []wire.Arg{wire.NewUint32(2), wire.NewString("wl_shm"), wire.NewUint32(1)},
		}))
	}()

	require.NoError(t, cl.DispatchOne())
	require.NoError(t, cl.DispatchOne())

	g, ok := reg.Find("wl_compositor")
	require.True(t, ok)
	require.Equal(t, uint32(6), g.Version)
	require.Len(t, reg.Globals(), 2)
}

func TestGlobalRemoveDropsEntry(t *testing.T) {
	cl, srv := newPair(t)
	reg, err := cl.GetRegistry()
	require.NoError(t, err)

	go func() {
		h, _ := srv.conn.PeekHeader()
		_, _ = srv.conn.ReceiveBody(h, wire.Signature{wire.ArgNewID})
		_ = srv.conn.SendMessage(wire.Message{
			ObjectID: reg.id, Opcode: proto.OpRegistryGlobal,
			Args: []wire.Arg{wire.NewUint32(1), wire.NewString("wl_compositor"), wire.NewUint32(1)},
		})
		_ = srv.conn.SendMessage(wire.Message{
			ObjectID: reg.id, Opcode: proto.OpRegistryGlobalRemove,
			Args: []wire.Arg{wire.NewUint32(1)},
		})
	}()

	require.NoError(t, cl.DispatchOne())
	require.NoError(t, cl.DispatchOne())
	_, ok := reg.Find("wl_compositor")
	require.False(t, ok)
}

func TestUnknownOpcodeDroppedNotFatal(t *testing.T) {
	cl, srv := newPair(t)

	go func() {
		_ = srv.conn.SendMessage(wire.Message{ObjectID: objtab.DisplayObjectID, Opcode: 99})
	}()

	err := cl.DispatchOne()
	require.NoError(t, err, "unknown opcode on known object must be dropped, not fatal")
}

func TestStrictModeMakesUnresolvableEventFatal(t *testing.T) {
	a, b, err := gowlconn.Socketpair(nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(); b.Close() })
	cl := New(a, Options{Strict: true})

	go func() {
		_ = b.SendMessage(wire.Message{ObjectID: 404, Opcode: 0})
	}()

	err = cl.DispatchOne()
	require.Error(t, err)
}

func TestSurfaceCommitLifecycle(t *testing.T) {
	cl, srv := newPair(t)
	reg, err := cl.GetRegistry()
	require.NoError(t, err)

	go func() {
		h, _ := srv.conn.PeekHeader()
		_, _ = srv.conn.ReceiveBody(h, wire.Signature{wire.ArgNewID}) // get_registry
		_ = srv.conn.SendMessage(wire.Message{
			ObjectID: reg.id, Opcode: proto.OpRegistryGlobal,
			Args: []wire.Arg{wire.NewUint32(1), wire.NewString("wl_compositor"), wire.NewUint32(6)},
		})
	}()
	require.NoError(t, cl.DispatchOne())

	comp, err := cl.BindCompositor(reg)
	require.NoError(t, err)

	go func() {
		h, _ := srv.conn.PeekHeader()
		_, _ = srv.conn.ReceiveBody(h, wire.Signature{wire.ArgUint32, wire.ArgString, wire.ArgUint32, wire.ArgNewID}) // bind
		h, _ = srv.conn.PeekHeader()
		_, _ = srv.conn.ReceiveBody(h, wire.Signature{wire.ArgNewID}) // create_surface
		h, _ = srv.conn.PeekHeader()
		_, _ = srv.conn.ReceiveBody(h, wire.Signature{wire.ArgObjectID, wire.ArgInt32, wire.ArgInt32}) // attach
		h, _ = srv.conn.PeekHeader()
		_, _ = srv.conn.ReceiveBody(h, wire.Signature{}) // commit
	}()

	surf, err := comp.CreateSurface()
	require.NoError(t, err)
	require.NoError(t, surf.Attach(42, 0, 0))
	require.NoError(t, surf.Commit())
}
