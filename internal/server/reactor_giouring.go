//go:build giouring
// +build giouring

package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"
)

// reactorEntries sizes the submission queue: one slot for the listener's
// accept plus one poll per client, with headroom for re-arms.
const reactorEntries = 256

// token values multiplex completions: the accept token is fixed, client
// poll tokens are the client's sequence id offset past it.
const (
	tokenAccept      = uint64(1)
	tokenClientBase  = uint64(2)
)

// uringReactor drives every client connection from a single goroutine:
// a multiplexed io_uring wait replaces one blocked recvmsg goroutine per
// client. Poll completions only signal readability; the actual recvmsg
// and dispatch still run through the same ClientState.dispatchOne path
// the goroutine-per-client model uses, so protocol behavior is
// identical between the two builds.
type uringReactor struct {
	ring     *giouring.Ring
	server   *Server
	listener *Listening
	clients  map[uint64]*ClientState
}

// AcceptLoopReactor accepts clients and dispatches their requests on a
// single io_uring-driven goroutine. Built only with -tags giouring; the
// default build's stub returns ErrReactorUnavailable.
func (l *Listening) AcceptLoopReactor(ctx context.Context) error {
	ring, err := giouring.CreateRing(reactorEntries)
	if err != nil {
		return fmt.Errorf("server: create ring: %w", err)
	}
	defer ring.QueueExit()

	r := &uringReactor{
		ring:     ring,
		server:   l.server,
		listener: l,
		clients:  make(map[uint64]*ClientState),
	}
	defer func() {
		for _, cs := range r.clients {
			cs.close()
		}
	}()

	if err := r.armAccept(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := ring.SubmitAndWait(1); err != nil {
			return fmt.Errorf("server: submit_and_wait: %w", err)
		}
		cqe, err := ring.WaitCQE()
		if err != nil {
			return fmt.Errorf("server: wait_cqe: %w", err)
		}
		token, res := cqe.UserData, cqe.Res
		ring.CQESeen(cqe)

		if err := r.complete(token, res); err != nil {
			return err
		}
	}
}

// armAccept queues a oneshot accept on the listening socket.
func (r *uringReactor) armAccept() error {
	sqe := r.ring.GetSQE()
	if sqe == nil {
		return errors.New("server: submission queue full")
	}
	sqe.PrepareAccept(r.listener.listener.Fd(), 0, 0, 0)
	sqe.UserData = tokenAccept
	return nil
}

// armPoll queues a oneshot readability poll for one client connection.
func (r *uringReactor) armPoll(cs *ClientState) error {
	sqe := r.ring.GetSQE()
	if sqe == nil {
		return errors.New("server: submission queue full")
	}
	sqe.PreparePollAdd(cs.conn.Fd(), unix.POLLIN)
	sqe.UserData = tokenClientBase + cs.id
	return nil
}

func (r *uringReactor) complete(token uint64, res int32) error {
	if token == tokenAccept {
		if res < 0 {
			return fmt.Errorf("server: accept: %w", unix.Errno(-res))
		}
		cs := r.server.newClientState(r.listener.listener.Adopt(int(res)))
		r.clients[cs.id] = cs
		if err := r.armPoll(cs); err != nil {
			return err
		}
		return r.armAccept()
	}

	cs, ok := r.clients[token-tokenClientBase]
	if !ok {
		return nil // client already torn down; stale completion
	}
	if res < 0 {
		r.dropClient(cs)
		return nil
	}

	// Readable: drain exactly one message, then re-arm. dispatchOne
	// blocks only if the message spans multiple segments, which is
	// acceptable here because a peer that sent a header keeps sending.
	if err := cs.dispatchOne(); err != nil {
		if !errors.Is(err, io.EOF) {
			cs.logger.Warnf("server: %v", err)
		}
		r.dropClient(cs)
		return nil
	}
	return r.armPoll(cs)
}

func (r *uringReactor) dropClient(cs *ClientState) {
	delete(r.clients, cs.id)
	cs.close()
}
