package conn

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/go-wl/internal/constants"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// SendMessage encodes msg and writes it in one sendmsg(2) call, attaching
// any fd arguments as SCM_RIGHTS ancillary data so they ride alongside
// the byte stream without ever being represented as numbers in it — the
// receiving process's fd numbers are assigned independently by its own
// kernel fd table. Once the send succeeds, ownership of the attached
// fds has transferred to the peer and the sender's duplicates are closed.
func (c *Conn) SendMessage(msg wire.Message) error {
	var fds wire.FDQueue
	buf, err := wire.Encode(msg, &fds)
	if err != nil {
		return fmt.Errorf("conn: encode: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	queued := fds.Drain()
	if len(queued) > MaxFDsPerMessage {
		// Ownership was handed to us with the message; close the fds so
		// the rejection doesn't leak them.
		for _, fd := range queued {
			_ = unix.Close(fd)
		}
		return fmt.Errorf("conn: message carries %d fds, limit is %d", len(queued), MaxFDsPerMessage)
	}

	var oob []byte
	if len(queued) > 0 {
		oob = unix.UnixRights(queued...)
	}
	for {
		err = unix.Sendmsg(c.fd, buf, oob, nil, 0)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("conn: sendmsg: %w", err)
	}
	if c.observer != nil {
		c.observer.ObserveSend(msg.ObjectID, msg.Opcode, uint64(len(buf)))
	}
	for _, fd := range queued {
		_ = unix.Close(fd)
	}
	return nil
}

// ReceiveMessage reads exactly one complete wire message addressed to
// sig's interface signature, pulling any ArgFD entries' actual
// descriptors out of ancillary data received alongside the message
// bytes. Returns io.EOF once the peer has closed the connection cleanly.
//
// Callers that don't know sig until they've seen the header's object_id
// and opcode (any generic dispatch loop) should use PeekHeader followed
// by ReceiveBody instead.
func (c *Conn) ReceiveMessage(sig wire.Signature) (wire.Message, error) {
	h, err := c.PeekHeader()
	if err != nil {
		return wire.Message{}, err
	}
	return c.ReceiveBody(h, sig)
}

// PeekHeader ensures the next 8 header bytes are buffered and returns
// the decoded header without consuming any bytes from the stream. It is
// always safe to call repeatedly before ReceiveBody; only ReceiveBody
// advances the read cursor.
func (c *Conn) PeekHeader() (wire.Header, error) {
	header, err := c.fill(wire.HeaderSize)
	if err != nil {
		return wire.Header{}, err
	}
	return wire.DecodeHeader(header)
}

// ReceiveBody consumes the message whose header was already returned by
// PeekHeader, decoding its body per sig. h must be the header most
// recently returned by PeekHeader on this Conn.
func (c *Conn) ReceiveBody(h wire.Header, sig wire.Signature) (wire.Message, error) {
	full, err := c.fill(int(h.Length))
	if err != nil {
		return wire.Message{}, err
	}

	c.mu.Lock()
	consumed := make([]byte, h.Length)
	copy(consumed, full[:h.Length])
	c.readBuf = c.readBuf[h.Length:]
	c.mu.Unlock()

	msg, err := wire.Decode(consumed, sig, &c.readFDs)
	if err != nil {
		return wire.Message{}, err
	}
	if c.observer != nil {
		c.observer.ObserveReceive(msg.ObjectID, msg.Opcode, uint64(h.Length))
	}
	return msg, nil
}

// SkipBody consumes the message whose header h was returned by
// PeekHeader without decoding it — the drop path for unknown objects and
// opcodes, where no signature is available. A dropped message may have
// carried fds; they cannot be attributed without a signature, so any fds
// sitting in the inbound queue after the skip are closed rather than
// left to desync later decodes. If one of them actually belonged to a
// subsequent message, that message's decode fails loudly with a
// missing-fd error instead of silently receiving the wrong descriptor.
func (c *Conn) SkipBody(h wire.Header) error {
	_, err := c.fill(int(h.Length))
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.readBuf = c.readBuf[h.Length:]
	orphaned := c.readFDs.Drain()
	c.mu.Unlock()

	if len(orphaned) > 0 {
		c.logger.Warnf("conn: closing %d fd(s) orphaned by a dropped message", len(orphaned))
		for _, fd := range orphaned {
			_ = unix.Close(fd)
		}
	}
	return nil
}

// fill ensures c.readBuf holds at least n bytes, performing recvmsg
// calls (and accumulating any received fds into c.readFDs) until it
// does. fds may arrive attached to whichever syscall happens to carry
// the last byte of the header or body, so ancillary data is decoded
// from every read regardless of which read it lands on.
func (c *Conn) fill(n int) ([]byte, error) {
	c.mu.Lock()
	have := len(c.readBuf)
	c.mu.Unlock()

	for have < n {
		chunk := make([]byte, constants.RecvBufferSize)
		oob := make([]byte, unix.CmsgSpace(MaxFDsPerMessage*4))

		nr, noob, _, _, err := unix.Recvmsg(c.fd, chunk, oob, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("conn: recvmsg: %w", err)
		}
		if nr == 0 {
			return nil, io.EOF
		}

		if noob > 0 {
			cmsgs, err := unix.ParseSocketControlMessage(oob[:noob])
			if err != nil {
				return nil, fmt.Errorf("conn: parse control message: %w", err)
			}
			for _, cmsg := range cmsgs {
				fds, err := unix.ParseUnixRights(&cmsg)
				if err != nil {
					continue
				}
				c.mu.Lock()
				for _, fd := range fds {
					c.readFDs.Push(fd)
				}
				c.mu.Unlock()
			}
		}

		c.mu.Lock()
		c.readBuf = append(c.readBuf, chunk[:nr]...)
		have = len(c.readBuf)
		c.mu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, n)
	copy(buf, c.readBuf[:n])
	return buf, nil
}
