package wire

import "encoding/binary"

// HeaderSize is the fixed 8-byte message header: object_id (u32),
// opcode (u16), total_byte_length (u16).
const HeaderSize = 8

// MaxMessageSize is the largest message the u16 length field can encode.
const MaxMessageSize = 1<<16 - 1

// Header is the decoded form of the 8-byte message header.
type Header struct {
	ObjectID uint32
	Opcode   uint16
	Length   uint16
}

// EncodeHeader writes a header into buf[0:8] using the wire's little-endian
// layout, mirroring the hand-rolled struct marshalling the rest of this
// codec uses rather than reflection-based encoding.
func EncodeHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:4], h.ObjectID)
	binary.LittleEndian.PutUint16(buf[4:6], h.Opcode)
	binary.LittleEndian.PutUint16(buf[6:8], h.Length)
}

// DecodeHeader reads a header from the first 8 bytes of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrTruncatedMessage
	}
	h := Header{
		ObjectID: binary.LittleEndian.Uint32(buf[0:4]),
		Opcode:   binary.LittleEndian.Uint16(buf[4:6]),
		Length:   binary.LittleEndian.Uint16(buf[6:8]),
	}
	if h.Length < HeaderSize || h.Length%4 != 0 {
		return Header{}, ErrBadLength
	}
	return h, nil
}

// padded4 rounds n up to the next multiple of 4.
func padded4(n int) int {
	return (n + 3) &^ 3
}
