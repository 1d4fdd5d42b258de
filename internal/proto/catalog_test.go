package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinInterfacesResolve(t *testing.T) {
	for name, d := range Builtin {
		require.Equal(t, name, d.Name)
	}
}

func TestDisplayOpcodes(t *testing.T) {
	sig, ok := WlDisplay.Request(OpDisplaySync)
	require.True(t, ok)
	require.Equal(t, "sync", sig.Name)

	sig, ok = WlDisplay.Request(OpDisplayGetRegistry)
	require.True(t, ok)
	require.Equal(t, "get_registry", sig.Name)

	_, ok = WlDisplay.Request(99)
	require.False(t, ok)
}

func TestSurfaceOpcodesMatchUpstreamNumbering(t *testing.T) {
	sig, ok := WlSurface.Request(OpSurfaceDestroy)
	require.True(t, ok)
	require.Equal(t, "destroy", sig.Name)

	sig, ok = WlSurface.Request(OpSurfaceCommit)
	require.True(t, ok)
	require.Equal(t, "commit", sig.Name)
}

func TestRegistryBindSignature(t *testing.T) {
	sig, ok := WlRegistry.Request(OpRegistryBind)
	require.True(t, ok)
	require.Equal(t, "bind", sig.Name)
	require.Len(t, sig.ArgumentTypes, 4)
}

func TestCallbackDoneEvent(t *testing.T) {
	sig, ok := WlCallback.Event(OpCallbackDone)
	require.True(t, ok)
	require.Equal(t, "done", sig.Name)
}
