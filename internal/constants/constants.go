package constants

import "time"

// Default configuration constants
const (
	// DefaultClientDisplay is the WAYLAND_DISPLAY value a client falls
	// back to when the variable is unset.
	DefaultClientDisplay = "wayland-0"

	// DefaultServerDisplay is the WAYLAND_DISPLAY value a server falls
	// back to when the variable is unset. Servers default to a distinct
	// name so a test compositor never collides with the session's real
	// display socket.
	DefaultServerDisplay = "wayland-1"

	// SocketFileMode restricts the listening socket to the owning user.
	SocketFileMode = 0700

	// ListenBacklog is the accept queue depth for the listening socket.
	ListenBacklog = 128

	// MaxFDsPerMessage bounds how many file descriptors a single
	// sendmsg/recvmsg call will carry. The kernel's own SCM_RIGHTS cap
	// is 253; the protocol never legitimately approaches that, so a
	// lower bound keeps ancillary buffers small and rejects a peer that
	// tries to flood the fd table.
	MaxFDsPerMessage = 28
)

// Timing constants for the dispatch lifecycle
const (
	// FrameCallbackInterval approximates one 60Hz vblank period. The
	// default ScheduleFrameCallback hook fires done immediately; a
	// compositor that batches frame callbacks on a timer uses this as
	// its tick.
	FrameCallbackInterval = 16 * time.Millisecond

	// AcceptRetryDelay is the pause before retrying a transient accept
	// failure (EMFILE and friends) instead of spinning on the listener.
	AcceptRetryDelay = 10 * time.Millisecond
)

// Memory allocation constants
const (
	// RecvBufferSize is the read chunk size per recvmsg call, sized to
	// hold one maximum-length wire message (the u16 length field limit).
	RecvBufferSize = 64 * 1024
)
