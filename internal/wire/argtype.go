// Package wire implements the Wayland wire format: message headers,
// argument marshalling, and the FD queue that rides alongside the byte
// stream.
package wire

// ArgType identifies the wire representation of one message argument.
type ArgType uint8

const (
	ArgInt32 ArgType = iota
	ArgUint32
	ArgFixed
	ArgString
	ArgObjectID
	ArgNewID
	ArgArray
	ArgFD
)

// Fixed is a signed 24.8 fixed-point number, per the Wayland wire format.
type Fixed int32

// FixedFromFloat64 converts a float64 to wire Fixed representation.
func FixedFromFloat64(f float64) Fixed {
	return Fixed(int32(f * 256))
}

// Float64 converts a wire Fixed value back to float64.
func (f Fixed) Float64() float64 {
	return float64(f) / 256
}

// Arg is a tagged union over one decoded or to-be-encoded argument value.
type Arg struct {
	Type   ArgType
	Int32  int32
	Uint32 uint32
	Fixed  Fixed
	String string
	Array  []byte
	FD     int
}

// NewInt32 builds an int32 argument.
func NewInt32(v int32) Arg { return Arg{Type: ArgInt32, Int32: v} }

// NewUint32 builds a uint32 argument.
func NewUint32(v uint32) Arg { return Arg{Type: ArgUint32, Uint32: v} }

// NewFixed builds a fixed-point argument.
func NewFixed(v Fixed) Arg { return Arg{Type: ArgFixed, Fixed: v} }

// NewString builds a string argument.
func NewString(v string) Arg { return Arg{Type: ArgString, String: v} }

// NewObjectID builds an object_id argument.
func NewObjectID(id uint32) Arg { return Arg{Type: ArgObjectID, Uint32: id} }

// NewID builds a new_id argument.
func NewID(id uint32) Arg { return Arg{Type: ArgNewID, Uint32: id} }

// NewArray builds an array argument.
func NewArray(v []byte) Arg { return Arg{Type: ArgArray, Array: v} }

// NewFD builds an fd argument. The fd carries no stream bytes; the codec
// threads it through the connection's FD queue instead.
func NewFD(fd int) Arg { return Arg{Type: ArgFD, FD: fd} }
