package conn

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/go-wl/internal/constants"
	"github.com/ehrlich-b/go-wl/internal/logging"
)

// Dial connects to the Wayland socket at path as a client.
func Dial(path string, logger *logging.Logger) (*Conn, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("conn: socket: %w", err)
	}
	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Connect(fd, addr); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("conn: connect %s: %w", path, err)
	}
	return newConn(fd, logger), nil
}

// Listener accepts incoming Wayland client connections on a bound Unix
// socket.
type Listener struct {
	fd     int
	path   string
	logger *logging.Logger
}

// Listen binds and listens on path. Per the real compositor convention,
// a stale socket left behind by a crashed previous instance is unlinked
// before binding; the socket is created with mode 0700 so only the
// owning user's processes can connect.
func Listen(path string, logger *logging.Logger) (*Listener, error) {
	if logger == nil {
		logger = logging.Default()
	}
	_ = unix.Unlink(path)

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("conn: socket: %w", err)
	}
	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("conn: bind %s: %w", path, err)
	}
	if err := unix.Chmod(path, constants.SocketFileMode); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("conn: chmod %s: %w", path, err)
	}
	if err := unix.Listen(fd, constants.ListenBacklog); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("conn: listen %s: %w", path, err)
	}
	logger.Infof("listening on %s", path)
	return &Listener{fd: fd, path: path, logger: logger}, nil
}

// Accept blocks for the next incoming client connection.
func (l *Listener) Accept() (*Conn, error) {
	fd, _, err := unix.Accept(l.fd)
	if err != nil {
		return nil, fmt.Errorf("conn: accept: %w", err)
	}
	return newConn(fd, l.logger), nil
}

// Close stops listening and removes the socket file.
func (l *Listener) Close() error {
	err := unix.Close(l.fd)
	_ = unix.Unlink(l.path)
	return err
}

// Path returns the bound socket path.
func (l *Listener) Path() string {
	return l.path
}

// Fd returns the listening socket's file descriptor, for callers that
// drive accept through an external poller instead of Accept.
func (l *Listener) Fd() int {
	return l.fd
}

// Adopt wraps a socket fd already accepted by an external poller (an
// io_uring accept completion) as a Conn, using this listener's logger.
func (l *Listener) Adopt(fd int) *Conn {
	return newConn(fd, l.logger)
}

// Socketpair returns two connected, already-spliced Conns sharing an
// anonymous AF_UNIX socketpair — used by internal/testsupport to splice
// a client and server together in-process without touching the
// filesystem.
func Socketpair(logger *logging.Logger) (a, b *Conn, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("conn: socketpair: %w", err)
	}
	return newConn(fds[0], logger), newConn(fds[1], logger), nil
}
