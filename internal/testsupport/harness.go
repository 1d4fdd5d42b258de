// Package testsupport provides in-process client/server test harnesses
// built on a real socketpair connection, so higher-level tests exercise
// the actual wire codec and dispatch loops rather than mocked transport.
package testsupport

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/go-wl/internal/client"
	gowlconn "github.com/ehrlich-b/go-wl/internal/conn"
	"github.com/ehrlich-b/go-wl/internal/server"
)

// PipeHarness wires a real client.Client to a real server.ClientState
// over an anonymous socketpair, with the server's dispatch loop already
// running in a background goroutine.
type PipeHarness struct {
	T      *testing.T
	Server *server.Server
	Client *client.Client
}

// NewPipeHarness constructs a Server with the given hooks, splices a
// Client onto it via Socketpair, and starts the server's per-connection
// dispatch loop. The harness's t.Cleanup closes both ends.
func NewPipeHarness(t *testing.T, hooks server.Hooks) *PipeHarness {
	t.Helper()
	srv := server.New(server.Options{Hooks: hooks})

	serverConn, clientConn, err := gowlconn.Socketpair(nil)
	require.NoError(t, err)

	cs := srv.AttachClient(serverConn)
	go srv.ServeOne(cs)

	cl := client.New(clientConn, client.Options{})
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})

	return &PipeHarness{T: t, Server: srv, Client: cl}
}
