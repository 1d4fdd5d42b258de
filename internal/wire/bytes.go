package wire

import (
	"encoding/binary"
	"unicode/utf8"
)

// appendUint32 appends a 4-byte little-endian value — used for int32,
// uint32, fixed, object_id, and new_id arguments, which all share this
// wire shape.
func appendUint32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

// appendString appends a length-prefixed, NUL-terminated, 4-byte-padded
// string. Length 0 (the empty string) still writes its trailing NUL and
// padding per the Wayland wire format; a genuinely absent string is the
// caller's concern (protocol layer), not the codec's.
func appendString(buf []byte, s string) []byte {
	n := uint32(len(s) + 1) // + trailing NUL
	buf = appendUint32(buf, n)
	buf = append(buf, s...)
	buf = append(buf, 0)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// appendArray appends a length-prefixed, 4-byte-padded opaque byte array.
func appendArray(buf []byte, a []byte) []byte {
	buf = appendUint32(buf, uint32(len(a)))
	buf = append(buf, a...)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// readUint32 reads a 4-byte little-endian value at off, returning the
// value and the offset just past it.
func readUint32(body []byte, off int) (uint32, int, error) {
	if off+4 > len(body) {
		return 0, off, ErrTruncatedMessage
	}
	return binary.LittleEndian.Uint32(body[off : off+4]), off + 4, nil
}

// readString reads a length-prefixed, NUL-terminated, 4-byte-padded
// string at off. Length 0 represents a null string and decodes to "".
func readString(body []byte, off int) (string, int, error) {
	n, off, err := readUint32(body, off)
	if err != nil {
		return "", off, err
	}
	if n == 0 {
		return "", off, nil
	}
	end := off + int(n)
	if end > len(body) {
		return "", off, ErrTruncatedMessage
	}
	if body[end-1] != 0 {
		return "", off, ErrBadString
	}
	s := body[off : end-1]
	if !utf8.Valid(s) {
		return "", off, ErrBadString
	}
	return string(s), padded4(end), nil
}

// readArray reads a length-prefixed, 4-byte-padded opaque byte array at off.
func readArray(body []byte, off int) ([]byte, int, error) {
	n, off, err := readUint32(body, off)
	if err != nil {
		return nil, off, err
	}
	end := off + int(n)
	if end > len(body) {
		return nil, off, ErrTruncatedMessage
	}
	a := make([]byte, n)
	copy(a, body[off:end])
	return a, padded4(end), nil
}
