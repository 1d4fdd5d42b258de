package objtab

import (
	"sync"

	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// Table is the live object directory for one connection: an RWMutex-
// guarded map from object ID to Record, plus the allocator for the IDs
// this side of the connection originates: client-range new_id values on
// a client table, server-range IDs on a server table.
type Table struct {
	mu      sync.RWMutex
	records map[uint32]*Record
	Alloc   *IDAllocator
}

// NewClientTable returns a table seeded with the wl_display singleton at
// ID 1, using the client-side ID range for subsequently created objects.
func NewClientTable() *Table {
	t := &Table{
		records: make(map[uint32]*Record),
		Alloc:   NewClientAllocator(),
	}
	// The display seed cannot collide: the table is empty and the
	// allocator never hands out ID 1.
	_ = t.Insert(&Record{ID: DisplayObjectID, Interface: proto.WlDisplay, Kind: KindDisplay, Version: 1})
	return t
}

// NewServerTable returns a table for the server side of one client
// connection. The server does not pre-seed a display record of its own;
// it dispatches display requests against a synthetic descriptor instead
// (see internal/server).
func NewServerTable() *Table {
	return &Table{
		records: make(map[uint32]*Record),
		Alloc:   NewServerAllocator(),
	}
}

// Insert adds rec to the table, keyed by rec.ID. A live record already
// at that ID is a protocol violation by whoever named the ID, so Insert
// refuses with ErrDuplicateID; every connection ID maps to exactly one
// live record. A record left behind in the destroyed state is replaced.
func (t *Table) Insert(rec *Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.records[rec.ID]; ok && !old.Destroyed() {
		return ErrDuplicateID
	}
	t.records[rec.ID] = rec
	return nil
}

// Replace installs rec at rec.ID regardless of what is there. It exists
// for one caller shape: retyping a just-created generic proxy into its
// kind-specific record once the binder knows the concrete role. New IDs
// go through Insert, which enforces uniqueness.
func (t *Table) Replace(rec *Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[rec.ID] = rec
}

// Lookup returns the record at id, or nil if none is live.
func (t *Table) Lookup(id uint32) *Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.records[id]
}

// Remove deletes the record at id from the table. It does not itself
// mark the record destroyed; callers that want the double-destroy guard
// should call Record.MarkDestroyed first.
func (t *Table) Remove(id uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, id)
}

// Len reports the number of live records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Each calls fn for every live record. fn must not mutate the table.
func (t *Table) Each(fn func(*Record)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.records {
		fn(r)
	}
}

// Dispatcher resolves an incoming message's object to its record and
// interface signature, tolerating unknown opcodes per the "forward
// compatibility" requirement: a message naming a live object but an
// opcode past the interface's known table is dropped (and logged) rather
// than treated as fatal, unless Strict is set.
type Dispatcher struct {
	Strict bool
	OnDrop func(objectID uint32, opcode uint16, reason string)
}

// ResolveRequest looks up the signature for a request on rec's interface,
// returning ok=false (and invoking OnDrop) for an unknown object or an
// opcode beyond what the interface declares.
func (d *Dispatcher) ResolveRequest(t *Table, objectID uint32, opcode uint16) (*Record, wire.Signature, bool) {
	rec := t.Lookup(objectID)
	if rec == nil {
		d.drop(objectID, opcode, "unknown object")
		return nil, nil, false
	}
	if rec.Destroyed() {
		d.drop(objectID, opcode, "destroyed object")
		return nil, nil, false
	}
	sig, found := rec.Interface.Request(opcode)
	if !found {
		d.drop(objectID, opcode, "unknown opcode")
		return nil, nil, false
	}
	return rec, sig.ArgumentTypes, true
}

// ResolveEvent mirrors ResolveRequest for the event direction.
func (d *Dispatcher) ResolveEvent(t *Table, objectID uint32, opcode uint16) (*Record, wire.Signature, bool) {
	rec := t.Lookup(objectID)
	if rec == nil {
		d.drop(objectID, opcode, "unknown object")
		return nil, nil, false
	}
	sig, found := rec.Interface.Event(opcode)
	if !found {
		d.drop(objectID, opcode, "unknown opcode")
		return nil, nil, false
	}
	return rec, sig.ArgumentTypes, true
}

func (d *Dispatcher) drop(objectID uint32, opcode uint16, reason string) {
	if d.OnDrop != nil {
		d.OnDrop(objectID, opcode, reason)
	}
}
