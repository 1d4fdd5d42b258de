package objtab

import (
	"testing"

	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/stretchr/testify/require"
)

func TestClientAllocatorMonotonic(t *testing.T) {
	a := NewClientAllocator()
	seen := make(map[uint32]bool)
	for i := 0; i < 1000; i++ {
		id, err := a.Alloc()
		require.NoError(t, err)
		require.NotZero(t, id)
		require.False(t, seen[id], "id %d allocated twice", id)
		seen[id] = true
		require.True(t, a.InRange(id))
	}
}

func TestServerAllocatorRange(t *testing.T) {
	a := NewServerAllocator()
	id, err := a.Alloc()
	require.NoError(t, err)
	require.GreaterOrEqual(t, id, ServerIDMin)
	require.True(t, a.InRange(id))
	require.False(t, a.InRange(5))
}

func TestAllocatorExhaustion(t *testing.T) {
	a := &IDAllocator{next: ServerIDMax, max: ServerIDMax}

	id, err := a.Alloc()
	require.NoError(t, err)
	require.Equal(t, ServerIDMax, id)

	_, err = a.Alloc()
	require.ErrorIs(t, err, ErrIDSpaceExhausted)
}

func TestClientTableSeedsDisplay(t *testing.T) {
	tbl := NewClientTable()
	rec := tbl.Lookup(DisplayObjectID)
	require.NotNil(t, rec)
	require.Equal(t, KindDisplay, rec.Kind)
	require.Equal(t, proto.WlDisplay, rec.Interface)
}

func TestTableInsertLookupRemove(t *testing.T) {
	tbl := NewClientTable()
	rec := &Record{ID: 2, Interface: proto.WlRegistry, Kind: KindRegistry}
	require.NoError(t, tbl.Insert(rec))
	require.Equal(t, rec, tbl.Lookup(2))
	require.Equal(t, 2, tbl.Len())

	tbl.Remove(2)
	require.Nil(t, tbl.Lookup(2))
	require.Equal(t, 1, tbl.Len())
}

func TestTableInsertRejectsLiveDuplicate(t *testing.T) {
	tbl := NewClientTable()
	require.NoError(t, tbl.Insert(&Record{ID: 2, Interface: proto.WlRegistry, Kind: KindRegistry}))

	err := tbl.Insert(&Record{ID: 2, Interface: proto.WlSurface, Kind: KindSurface})
	require.ErrorIs(t, err, ErrDuplicateID)

	// The original record survives the rejected insert.
	require.Equal(t, KindRegistry, tbl.Lookup(2).Kind)
}

func TestTableInsertReplacesDestroyedRecord(t *testing.T) {
	tbl := NewClientTable()
	old := &Record{ID: 2, Interface: proto.WlCallback, Kind: KindCallback}
	require.NoError(t, tbl.Insert(old))
	old.MarkDestroyed()

	require.NoError(t, tbl.Insert(&Record{ID: 2, Interface: proto.WlRegistry, Kind: KindRegistry}))
	require.Equal(t, KindRegistry, tbl.Lookup(2).Kind)
}

func TestRecordDoubleDestroy(t *testing.T) {
	rec := &Record{ID: 3}
	require.True(t, rec.MarkDestroyed())
	require.False(t, rec.MarkDestroyed())
	require.True(t, rec.Destroyed())
}

func TestSurfaceLifecycle(t *testing.T) {
	s := &SurfaceState{}
	require.True(t, s.Attach(7))
	require.Equal(t, SurfaceAttached, s.Phase)
	require.True(t, s.Damage(DamageRect{0, 0, 10, 10}))

	buf, damage, ok := s.Commit()
	require.True(t, ok)
	require.Equal(t, uint32(7), buf)
	require.Len(t, damage, 1)
	require.Equal(t, SurfaceCommitted, s.Phase)

	s.Destroy()
	require.Equal(t, SurfaceDestroyed, s.Phase)
	require.False(t, s.Attach(9), "attach after destroy must fail")
}

func TestSurfaceCommitFromCreatedIsLegal(t *testing.T) {
	s := &SurfaceState{}
	_, _, ok := s.Commit()
	require.True(t, ok)
}

func TestCallbackFiresOnce(t *testing.T) {
	c := &CallbackState{}
	require.True(t, c.Fire())
	require.False(t, c.Fire())
}

func TestDispatcherUnknownOpcodeDrops(t *testing.T) {
	tbl := NewClientTable()
	var dropped []string
	d := &Dispatcher{OnDrop: func(id uint32, op uint16, reason string) {
		dropped = append(dropped, reason)
	}}

	_, _, ok := d.ResolveRequest(tbl, DisplayObjectID, 99)
	require.False(t, ok)
	require.Contains(t, dropped, "unknown opcode")

	_, _, ok = d.ResolveRequest(tbl, 404, 0)
	require.False(t, ok)
	require.Contains(t, dropped, "unknown object")
}

func TestDispatcherResolvesKnownRequest(t *testing.T) {
	tbl := NewClientTable()
	d := &Dispatcher{}
	rec, sig, ok := d.ResolveRequest(tbl, DisplayObjectID, proto.OpDisplaySync)
	require.True(t, ok)
	require.Equal(t, DisplayObjectID, rec.ID)
	require.Len(t, sig, 1)
}
