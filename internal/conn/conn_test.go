package conn

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/go-wl/internal/wire"
)

func TestSocketpairRoundTrip(t *testing.T) {
	a, b, err := Socketpair(nil)
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	msg := wire.Message{ObjectID: 1, Opcode: 0, Args: []wire.Arg{
		wire.NewString("wl_compositor"), wire.NewUint32(6),
	}}
	sig := wire.Signature{wire.ArgString, wire.ArgUint32}

	require.NoError(t, a.SendMessage(msg))
	got, err := b.ReceiveMessage(sig)
	require.NoError(t, err)
	require.Equal(t, msg, got)
}

func TestSocketpairPassesFDs(t *testing.T) {
	a, b, err := Socketpair(nil)
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	tmp, err := os.CreateTemp("", "wl-conn-test")
	require.NoError(t, err)
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	_, err = tmp.WriteString("hello")
	require.NoError(t, err)

	// SendMessage takes ownership of fd arguments and closes them after a
	// successful send, so hand it a duplicate rather than the file's own fd.
	sendFD, err := unix.Dup(int(tmp.Fd()))
	require.NoError(t, err)

	msg := wire.Message{ObjectID: 1, Opcode: 0, Args: []wire.Arg{
		wire.NewFD(sendFD),
	}}
	sig := wire.Signature{wire.ArgFD}

	require.NoError(t, a.SendMessage(msg))
	got, err := b.ReceiveMessage(sig)
	require.NoError(t, err)
	require.NotEqual(t, int(tmp.Fd()), got.Args[0].FD, "receiver gets its own fd number")

	recvFile := os.NewFile(uintptr(got.Args[0].FD), "received")
	defer recvFile.Close()
	buf := make([]byte, 5)
	_, err = recvFile.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf))
}

func TestSkipBodyClosesOrphanedFDs(t *testing.T) {
	a, b, err := Socketpair(nil)
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	sendFD, err := unix.Dup(int(w.Fd()))
	require.NoError(t, err)
	w.Close()

	// An fd-bearing message the receiver has no signature for, followed
	// by an ordinary one.
	require.NoError(t, a.SendMessage(wire.Message{ObjectID: 9, Opcode: 99, Args: []wire.Arg{wire.NewFD(sendFD)}}))
	require.NoError(t, a.SendMessage(wire.Message{ObjectID: 1, Opcode: 0, Args: []wire.Arg{wire.NewUint32(7)}}))

	h, err := b.PeekHeader()
	require.NoError(t, err)
	require.Equal(t, uint32(9), h.ObjectID)
	require.NoError(t, b.SkipBody(h))
	require.Equal(t, 0, b.readFDs.Len(), "orphaned fd must not linger in the queue")

	got, err := b.ReceiveMessage(wire.Signature{wire.ArgUint32})
	require.NoError(t, err)
	require.Equal(t, uint32(7), got.Args[0].Uint32)
}

func TestReceiveMessageEOFOnClose(t *testing.T) {
	a, b, err := Socketpair(nil)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Close())
	_, err = b.ReceiveMessage(wire.Signature{})
	require.ErrorIs(t, err, io.EOF)
}

func TestReceiveMessageReassemblesMultipleSyscalls(t *testing.T) {
	a, b, err := Socketpair(nil)
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	big := make([]byte, 2000)
	for i := range big {
		big[i] = byte(i)
	}
	msg := wire.Message{ObjectID: 1, Opcode: 0, Args: []wire.Arg{wire.NewArray(big)}}
	sig := wire.Signature{wire.ArgArray}

	require.NoError(t, a.SendMessage(msg))
	got, err := b.ReceiveMessage(sig)
	require.NoError(t, err)
	require.Equal(t, big, got.Args[0].Array)
}

func TestDisplaySocketPathDefaultsDisplay(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "")
	path, err := DisplaySocketPath()
	require.NoError(t, err)
	require.Equal(t, "/run/user/1000/wayland-0", path)
}

func TestDisplaySocketPathRequiresRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	_, err := DisplaySocketPath()
	require.Error(t, err)
}

func TestDisplaySocketPathAbsoluteOverride(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("WAYLAND_DISPLAY", "/tmp/custom-wayland")
	path, err := DisplaySocketPath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom-wayland", path)
}

func TestServerSocketPathDefaultsDisplay(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "")
	path, err := ServerSocketPath()
	require.NoError(t, err)
	require.Equal(t, "/run/user/1000/wayland-1", path)
}

func TestListenAndAccept(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/wayland-test"

	l, err := Listen(path, nil)
	require.NoError(t, err)
	defer l.Close()

	clientDone := make(chan error, 1)
	go func() {
		c, err := Dial(path, nil)
		if err != nil {
			clientDone <- err
			return
		}
		defer c.Close()
		clientDone <- c.SendMessage(wire.Message{ObjectID: 1, Opcode: 0})
	}()

	server, err := l.Accept()
	require.NoError(t, err)
	defer server.Close()

	_, err = server.ReceiveMessage(wire.Signature{})
	require.NoError(t, err)
	require.NoError(t, <-clientDone)
}
