package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		sig  Signature
	}{
		{
			name: "empty",
			msg:  Message{ObjectID: 1, Opcode: 0},
			sig:  Signature{},
		},
		{
			name: "scalars",
			msg: Message{ObjectID: 2, Opcode: 3, Args: []Arg{
				NewInt32(-7), NewUint32(42), NewObjectID(9), NewID(10), NewFixed(FixedFromFloat64(1.5)),
			}},
			sig: Signature{ArgInt32, ArgUint32, ArgObjectID, ArgNewID, ArgFixed},
		},
		{
			name: "string and array",
			msg: Message{ObjectID: 4, Opcode: 1, Args: []Arg{
				NewString("wl_compositor"), NewArray([]byte{1, 2, 3}),
			}},
			sig: Signature{ArgString, ArgArray},
		},
		{
			name: "empty string",
			msg: Message{ObjectID: 4, Opcode: 1, Args: []Arg{
				NewString(""),
			}},
			sig: Signature{ArgString},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var outFDs FDQueue
			buf, err := Encode(tt.msg, &outFDs)
			require.NoError(t, err)
			require.Equal(t, 0, len(buf)%4, "encoded length must be 4-byte aligned")

			h, err := DecodeHeader(buf)
			require.NoError(t, err)
			require.Equal(t, int(h.Length), len(buf))

			var inFDs FDQueue
			got, err := Decode(buf, tt.sig, &inFDs)
			require.NoError(t, err)
			require.Equal(t, tt.msg.ObjectID, got.ObjectID)
			require.Equal(t, tt.msg.Opcode, got.Opcode)
			require.Equal(t, tt.msg, got)
		})
	}
}

func TestRoundTripWithFDs(t *testing.T) {
	msg := Message{ObjectID: 5, Opcode: 0, Args: []Arg{
		NewUint32(100), NewFD(11), NewUint32(200), NewFD(22),
	}}
	sig := Signature{ArgUint32, ArgFD, ArgUint32, ArgFD}

	var outFDs FDQueue
	buf, err := Encode(msg, &outFDs)
	require.NoError(t, err)
	require.Equal(t, []int{11, 22}, outFDs.fds)

	inFDs := FDQueue{fds: []int{11, 22}}
	got, err := Decode(buf, sig, &inFDs)
	require.NoError(t, err)
	require.Equal(t, 0, inFDs.Len())
	require.Equal(t, 11, got.Args[1].FD)
	require.Equal(t, 22, got.Args[3].FD)
}

func TestHeaderOnlyMessage(t *testing.T) {
	buf := make([]byte, HeaderSize)
	EncodeHeader(buf, Header{ObjectID: 1, Opcode: 0, Length: HeaderSize})

	var fds FDQueue
	msg, err := Decode(buf, Signature{}, &fds)
	require.NoError(t, err)
	require.Empty(t, msg.Args)
}

func TestDecodeErrors(t *testing.T) {
	t.Run("truncated header", func(t *testing.T) {
		_, err := DecodeHeader([]byte{1, 2, 3})
		require.ErrorIs(t, err, ErrTruncatedMessage)
	})

	t.Run("bad length not multiple of 4", func(t *testing.T) {
		buf := make([]byte, HeaderSize)
		EncodeHeader(buf, Header{Length: 9})
		_, err := DecodeHeader(buf)
		require.ErrorIs(t, err, ErrBadLength)
	})

	t.Run("missing fd", func(t *testing.T) {
		buf := make([]byte, HeaderSize)
		EncodeHeader(buf, Header{Length: HeaderSize})
		var empty FDQueue
		_, err := Decode(buf, Signature{ArgFD}, &empty)
		require.ErrorIs(t, err, ErrMissingFd)
	})

	t.Run("bad string missing nul", func(t *testing.T) {
		buf := make([]byte, HeaderSize)
		buf = appendUint32(buf, 4)
		buf = append(buf, 'a', 'b', 'c', 'd') // no trailing NUL
		EncodeHeader(buf, Header{Length: uint16(len(buf))})
		var fds FDQueue
		_, err := Decode(buf, Signature{ArgString}, &fds)
		require.ErrorIs(t, err, ErrBadString)
	})
}

func TestMessageTooLarge(t *testing.T) {
	big := make([]byte, MaxMessageSize)
	msg := Message{ObjectID: 1, Opcode: 0, Args: []Arg{NewArray(big)}}
	var fds FDQueue
	_, err := Encode(msg, &fds)
	require.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestCountFDs(t *testing.T) {
	sig := Signature{ArgUint32, ArgFD, ArgString, ArgFD}
	require.Equal(t, 2, sig.CountFDs())
}
