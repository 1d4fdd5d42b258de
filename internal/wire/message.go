package wire

// Signature describes the argument shape of one request or event, in
// declaration order. It is the wire-level twin of a protocol interface's
// per-opcode argument list (internal/proto attaches names and
// since-version metadata around this).
type Signature []ArgType

// Message is a fully decoded wire message: the header plus its typed
// argument tuple. FDs travel in Args' ArgFD entries but are not part of
// the header's byte length.
type Message struct {
	ObjectID uint32
	Opcode   uint16
	Args     []Arg
}

// Encode serializes msg into a wire-format byte buffer and appends any
// fd arguments to outFDs in declaration order. Returns ErrMessageTooLarge
// if the encoded length would exceed the u16 length field.
func Encode(msg Message, outFDs *FDQueue) ([]byte, error) {
	buf := make([]byte, HeaderSize)

	for _, a := range msg.Args {
		switch a.Type {
		case ArgInt32:
			buf = appendUint32(buf, uint32(a.Int32))
		case ArgUint32, ArgObjectID, ArgNewID:
			buf = appendUint32(buf, a.Uint32)
		case ArgFixed:
			buf = appendUint32(buf, uint32(a.Fixed))
		case ArgString:
			buf = appendString(buf, a.String)
		case ArgArray:
			buf = appendArray(buf, a.Array)
		case ArgFD:
			outFDs.Push(a.FD)
			// no stream bytes for fd arguments
		}
	}

	if len(buf) > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}

	EncodeHeader(buf, Header{ObjectID: msg.ObjectID, Opcode: msg.Opcode, Length: uint16(len(buf))})
	return buf, nil
}

// Decode parses a complete wire message (header plus body, exactly
// header.Length bytes) according to sig, pulling one FD per ArgFD entry
// from inFDs in order.
func Decode(buf []byte, sig Signature, inFDs *FDQueue) (Message, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return Message{}, err
	}
	if len(buf) != int(h.Length) {
		return Message{}, ErrBadLength
	}

	body := buf[HeaderSize:]
	msg := Message{ObjectID: h.ObjectID, Opcode: h.Opcode}
	if len(sig) > 0 {
		msg.Args = make([]Arg, 0, len(sig))
	}

	off := 0
	for _, t := range sig {
		switch t {
		case ArgInt32:
			v, n, err := readUint32(body, off)
			if err != nil {
				return Message{}, err
			}
			msg.Args = append(msg.Args, NewInt32(int32(v)))
			off = n
		case ArgUint32:
			v, n, err := readUint32(body, off)
			if err != nil {
				return Message{}, err
			}
			msg.Args = append(msg.Args, NewUint32(v))
			off = n
		case ArgObjectID:
			v, n, err := readUint32(body, off)
			if err != nil {
				return Message{}, err
			}
			msg.Args = append(msg.Args, NewObjectID(v))
			off = n
		case ArgNewID:
			v, n, err := readUint32(body, off)
			if err != nil {
				return Message{}, err
			}
			msg.Args = append(msg.Args, NewID(v))
			off = n
		case ArgFixed:
			v, n, err := readUint32(body, off)
			if err != nil {
				return Message{}, err
			}
			msg.Args = append(msg.Args, NewFixed(Fixed(v)))
			off = n
		case ArgString:
			s, n, err := readString(body, off)
			if err != nil {
				return Message{}, err
			}
			msg.Args = append(msg.Args, NewString(s))
			off = n
		case ArgArray:
			a, n, err := readArray(body, off)
			if err != nil {
				return Message{}, err
			}
			msg.Args = append(msg.Args, NewArray(a))
			off = n
		case ArgFD:
			fd, ok := inFDs.Pop()
			if !ok {
				return Message{}, ErrMissingFd
			}
			msg.Args = append(msg.Args, NewFD(fd))
		}
	}

	return msg, nil
}

// CountFDs returns the number of ArgFD entries a signature declares —
// the exact count of FDs a decode of that signature must consume.
func (sig Signature) CountFDs() int {
	n := 0
	for _, t := range sig {
		if t == ArgFD {
			n++
		}
	}
	return n
}
