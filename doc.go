// Package wl implements the core of the Wayland protocol in pure Go:
// the wire codec with SCM_RIGHTS file-descriptor passing, per-connection
// object tables, and both the client and server (compositor-side)
// runtimes up to the surface-commit boundary.
//
// The package root exposes the application-facing surface; the protocol
// machinery lives in internal packages:
//
//	internal/wire        message framing and argument marshalling
//	internal/proto       static interface descriptors (wl_display, ...)
//	internal/objtab      object ID allocation, records, dispatch
//	internal/conn        Unix-socket transport and fd passing
//	internal/client      display, registry, sync/roundtrip, proxies
//	internal/server      listener, per-client state, globals, hooks
//	internal/concurrent  generic registry/queue/ring/refcount/pool
//
// A minimal client session:
//
//	cl, err := wl.Connect("", wl.ClientOptions{})
//	reg, _ := cl.GetRegistry()
//	_ = cl.Roundtrip(ctx)                 // globals now enumerated
//	comp, _ := cl.BindCompositor(reg)
//	surf, _ := comp.CreateSurface()
//	_ = surf.Commit()
//
// A minimal compositor:
//
//	srv := wl.NewServer(wl.ServerOptions{Hooks: hooks})
//	srv.AddCompositorGlobal(6)
//	l, _ := srv.Listen(path)
//	_ = l.AcceptLoop(ctx)
package wl
