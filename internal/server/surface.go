package server

import (
	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

func (cs *ClientState) handleSurfaceRequest(rec *objtab.Record, msg wire.Message) error {
	switch msg.Opcode {
	case proto.OpSurfaceDestroy:
		rec.Surface.Destroy()
		rec.MarkDestroyed()
		cs.table.Remove(rec.ID)
		cs.mu.Lock()
		delete(cs.surfaces, rec.ID)
		cs.mu.Unlock()
		if hook := cs.server.hooks.OnSurfaceDestroyed; hook != nil {
			hook(cs, rec.ID)
		}
	case proto.OpSurfaceAttach:
		rec.Surface.Attach(msg.Args[0].Uint32)
	case proto.OpSurfaceDamage:
		rec.Surface.Damage(objtab.DamageRect{
			X: msg.Args[0].Int32, Y: msg.Args[1].Int32,
			Width: msg.Args[2].Int32, Height: msg.Args[3].Int32,
		})
	case proto.OpSurfaceFrame:
		callbackID := msg.Args[0].Uint32
		return cs.scheduleFrameCallback(rec.ID, callbackID)
	case proto.OpSurfaceCommit:
		return cs.commitSurface(rec)
	}
	return nil
}

func (cs *ClientState) scheduleFrameCallback(surfaceID, callbackID uint32) error {
	if hook := cs.server.hooks.ScheduleFrameCallback; hook != nil {
		hook(cs, surfaceID, callbackID)
		return nil
	}
	// Default: fire immediately. A real compositor defers this until it
	// actually repaints; a minimal one that never repaints must still
	// fire done so clients don't block forever waiting on a frame
	// callback that will never otherwise arrive.
	return cs.send(callbackID, proto.OpCallbackDone, wire.NewUint32(0))
}

func (cs *ClientState) commitSurface(rec *objtab.Record) error {
	buffer, damage, ok := rec.Surface.Commit()
	if !ok {
		return cs.send(displayObjectID, proto.OpDisplayError,
			wire.NewObjectID(rec.ID), wire.NewUint32(0), wire.NewString("commit on destroyed surface"))
	}
	if hook := cs.server.hooks.OnSurfaceCommit; hook != nil {
		hook(cs, rec.ID, buffer, damage)
	}
	return nil
}
