package wl

import (
	"context"

	"github.com/ehrlich-b/go-wl/internal/conn"
	"github.com/ehrlich-b/go-wl/internal/server"
)

// Server listens for Wayland clients and advertises globals to each.
type Server = server.Server

// ServerOptions configures a new Server.
type ServerOptions = server.Options

// Hooks are the compositor lifecycle callbacks the server core invokes;
// rendering policy lives entirely behind them.
type Hooks = server.Hooks

// ClientState is the server's view of one connected client.
type ClientState = server.ClientState

// ServerGlobal is one advertised global on the server side.
type ServerGlobal = server.Global

// Listening is a bound server socket ready to accept clients.
type Listening = server.Listening

// NewServer constructs a Server; add globals before accepting clients.
func NewServer(opts ServerOptions) *Server {
	return server.New(opts)
}

// ListenAndServe resolves the server socket path from the environment
// (defaulting the display name to "wayland-1"), binds it, and runs the
// accept loop until ctx is cancelled. The socket is unlinked on return.
func ListenAndServe(ctx context.Context, srv *Server) error {
	path, err := conn.ServerSocketPath()
	if err != nil {
		return WrapError("listen", err)
	}
	l, err := srv.Listen(path)
	if err != nil {
		return WrapError("listen", err)
	}
	defer l.Close()
	if err := l.AcceptLoop(ctx); err != nil && ctx.Err() == nil {
		return WrapError("accept", err)
	}
	return ctx.Err()
}
