// Package interfaces provides internal interface definitions for go-wl.
// These are separate from the public interfaces to avoid circular imports
// between the main package and internal packages.
package interfaces

// Logger interface for optional logging.
type Logger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Observer interface for protocol instrumentation.
// Implementations must be thread-safe as methods are called from the
// dispatch loop.
type Observer interface {
	// ObserveSend is called after a request or event is written to the wire.
	ObserveSend(objectID uint32, opcode uint16, bytes uint64)

	// ObserveReceive is called after a complete message is decoded.
	ObserveReceive(objectID uint32, opcode uint16, bytes uint64)

	// ObserveRoundtrip is called when a sync's done event arrives.
	ObserveRoundtrip(latencyNs uint64)

	// ObserveBind is called when a registry bind request is issued or served.
	ObserveBind(interfaceName string, version uint32)

	// ObserveDrop is called for each message dropped by dispatch
	// (unknown object, unknown opcode, destroyed object).
	ObserveDrop(objectID uint32, opcode uint16)
}
