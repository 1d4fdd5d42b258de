// Package conn wraps a Wayland Unix-domain socket connection: framing
// messages through internal/wire, threading file descriptors through
// SCM_RIGHTS ancillary data, and resolving the well-known environment
// variables a client or server uses to find the socket. It is built
// directly on golang.org/x/sys/unix rather than net.UnixConn because FD
// passing requires raw Sendmsg/Recvmsg control-message access that the
// net package does not expose.
package conn

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/go-wl/internal/constants"
	"github.com/ehrlich-b/go-wl/internal/interfaces"
	"github.com/ehrlich-b/go-wl/internal/logging"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// ErrNoRuntimeDir is returned when $XDG_RUNTIME_DIR is unset and
// $WAYLAND_DISPLAY is not an absolute path, so no socket path can be
// resolved.
var ErrNoRuntimeDir = errors.New("conn: XDG_RUNTIME_DIR is not set")

// MaxFDsPerMessage bounds how many file descriptors a single sendmsg/
// recvmsg call will carry, matching the real protocol's implementation
// limit so a malicious or buggy peer can't force unbounded ancillary
// buffer allocation.
const MaxFDsPerMessage = constants.MaxFDsPerMessage

// Conn is one end of a Wayland connection: a raw Unix domain socket fd,
// buffered read state, and the inbound FD queue of descriptors received
// but not yet consumed by a decoded message.
type Conn struct {
	fd     int
	logger *logging.Logger

	writeMu sync.Mutex

	readBuf   []byte // raw bytes read but not yet consumed
	readFDs   wire.FDQueue
	closeOnce sync.Once
	closed    bool
	mu        sync.Mutex

	observer interfaces.Observer
}

// newConn wraps an already-connected socket fd.
func newConn(fd int, logger *logging.Logger) *Conn {
	if logger == nil {
		logger = logging.Default()
	}
	return &Conn{fd: fd, logger: logger}
}

// Fd returns the underlying socket file descriptor. Exposed for poller
// integration (e.g. registering with an epoll or io_uring reactor).
func (c *Conn) Fd() int {
	return c.fd
}

// SetObserver installs an instrumentation observer invoked on every
// sent and received message. Must be set before the first SendMessage/
// ReceiveBody; it is not guarded for concurrent replacement.
func (c *Conn) SetObserver(o interfaces.Observer) {
	c.observer = o
}

// Close shuts down the socket and drains any file descriptors queued
// from a partially-consumed read, closing each to avoid leaking them.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		fds := c.readFDs.Drain()
		c.mu.Unlock()
		for _, fd := range fds {
			_ = unix.Close(fd)
		}
		err = unix.Close(c.fd)
	})
	return err
}

// DisplaySocketPath resolves the Unix socket path a Wayland client
// connects to, following $XDG_RUNTIME_DIR and $WAYLAND_DISPLAY
// (defaulting the latter to "wayland-0"), matching the resolution order
// real Wayland clients use. An absolute $WAYLAND_DISPLAY overrides the
// runtime-dir join entirely.
func DisplaySocketPath() (string, error) {
	return socketPath(constants.DefaultClientDisplay)
}

// ServerSocketPath resolves the Unix socket path a Wayland server
// listens on; identical resolution to DisplaySocketPath except the
// default display name is "wayland-1".
func ServerSocketPath() (string, error) {
	return socketPath(constants.DefaultServerDisplay)
}

func socketPath(defaultDisplay string) (string, error) {
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = defaultDisplay
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", ErrNoRuntimeDir
	}
	return filepath.Join(runtimeDir, display), nil
}
