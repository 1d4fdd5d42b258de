package client

import (
	"context"
	"fmt"
	"time"

	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// Sync sends wl_display.sync and returns the freshly allocated callback
// object ID without waiting for the server's done event. The done event
// is observed during normal dispatch (DispatchOne/Run/Roundtrip); once
// it fires, the callback record is destroyed. Callers that want the
// blocking form use Roundtrip.
func (c *Client) Sync() (uint32, error) {
	id, _, err := c.sync()
	return id, err
}

// sync allocates and registers the callback, sends the request, and
// returns the done channel the dispatch handler will close.
func (c *Client) sync() (uint32, chan struct{}, error) {
	callbackID, err := c.allocID()
	if err != nil {
		return 0, nil, err
	}
	rec := &objtab.Record{ID: callbackID, Interface: proto.WlCallback, Kind: objtab.KindCallback, Callback: &objtab.CallbackState{}}
	if err := c.table.Insert(rec); err != nil {
		return 0, nil, fmt.Errorf("client: sync: %w", err)
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.syncing[callbackID] = done
	c.mu.Unlock()

	if err := c.send(objtab.DisplayObjectID, proto.OpDisplaySync, wire.NewID(callbackID)); err != nil {
		return 0, nil, fmt.Errorf("client: sync: %w", err)
	}
	return callbackID, done, nil
}

// Roundtrip sends a sync and blocks until its done event arrives,
// driving DispatchOne itself. Any other events received in the interim
// are dispatched normally. Roundtrip must only be called from the
// goroutine that owns dispatch (see Run's single-reader-goroutine note);
// calling it concurrently with Run races on the socket read path.
//
// Completion is detected by a flag set from inside the wl_callback.done
// handler itself (handleCallbackDone), never by inspecting "the last
// message type dispatched" — a design that breaks whenever an unrelated
// event arrives interleaved with the callback's done event.
func (c *Client) Roundtrip(ctx context.Context) error {
	start := time.Now()
	_, done, err := c.sync()
	if err != nil {
		return err
	}

	for {
		select {
		case <-done:
			if c.observer != nil {
				c.observer.ObserveRoundtrip(uint64(time.Since(start).Nanoseconds()))
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.DispatchOne(); err != nil {
				return fmt.Errorf("client: roundtrip: %w", err)
			}
		}
	}
}

func (c *Client) handleCallbackDone(rec *objtab.Record, msg wire.Message) error {
	if rec.Callback == nil || !rec.Callback.Fire() {
		return fmt.Errorf("client: wl_callback.done delivered twice for object %d", rec.ID)
	}
	c.mu.Lock()
	done, isSync := c.syncing[rec.ID]
	delete(c.syncing, rec.ID)
	surface, isFrame := c.frameHooks[rec.ID]
	delete(c.frameHooks, rec.ID)
	c.mu.Unlock()

	rec.MarkDestroyed()
	c.table.Remove(rec.ID)

	if isSync {
		close(done)
	}
	if isFrame {
		surface.mu.Lock()
		hook := surface.frameCallbacks[rec.ID]
		delete(surface.frameCallbacks, rec.ID)
		surface.mu.Unlock()
		if hook != nil {
			hook(msg.Args[0].Uint32)
		}
	}
	return nil
}
