package testsupport

import (
	"sync"

	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/server"
)

// RecordedCommit captures one OnSurfaceCommit invocation for assertions.
type RecordedCommit struct {
	SurfaceID uint32
	Buffer    uint32
	Damage    []objtab.DamageRect
}

// FakeCompositorHooks records every lifecycle callback invocation
// instead of rendering anything, for tests that assert on the sequence
// of hook calls a client's requests produce.
type FakeCompositorHooks struct {
	mu        sync.Mutex
	Created   []uint32
	Destroyed []uint32
	Commits   []RecordedCommit
	Connected int
}

// Hooks returns a server.Hooks wired to this recorder.
func (f *FakeCompositorHooks) Hooks() server.Hooks {
	return server.Hooks{
		OnClientConnected: func(cs *server.ClientState) {
			f.mu.Lock()
			f.Connected++
			f.mu.Unlock()
		},
		OnSurfaceCreated: func(cs *server.ClientState, surfaceID uint32) {
			f.mu.Lock()
			f.Created = append(f.Created, surfaceID)
			f.mu.Unlock()
		},
		OnSurfaceDestroyed: func(cs *server.ClientState, surfaceID uint32) {
			f.mu.Lock()
			f.Destroyed = append(f.Destroyed, surfaceID)
			f.mu.Unlock()
		},
		OnSurfaceCommit: func(cs *server.ClientState, surfaceID uint32, buffer uint32, damage []objtab.DamageRect) {
			f.mu.Lock()
			f.Commits = append(f.Commits, RecordedCommit{SurfaceID: surfaceID, Buffer: buffer, Damage: damage})
			f.mu.Unlock()
		},
	}
}

// CommitCount returns the number of recorded commits so far.
func (f *FakeCompositorHooks) CommitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Commits)
}
