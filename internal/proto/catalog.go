// Package proto holds the static interface descriptors the core
// recognizes: name, version, and per-opcode request/event signatures.
// Descriptors are immutable and built once at package init.
package proto

import "github.com/ehrlich-b/go-wl/internal/wire"

// MessageSignature describes one request or event: its name (for
// logging), argument types, and the interface version that introduced it.
type MessageSignature struct {
	Name          string
	ArgumentTypes wire.Signature
	SinceVersion  uint32
}

// InterfaceDescriptor is the immutable schema for one Wayland interface.
type InterfaceDescriptor struct {
	Name     string
	Version  uint32
	Requests []MessageSignature
	Events   []MessageSignature
}

// Request looks up a request signature by opcode.
func (d *InterfaceDescriptor) Request(opcode uint16) (MessageSignature, bool) {
	if int(opcode) >= len(d.Requests) {
		return MessageSignature{}, false
	}
	return d.Requests[opcode], true
}

// Event looks up an event signature by opcode.
func (d *InterfaceDescriptor) Event(opcode uint16) (MessageSignature, bool) {
	if int(opcode) >= len(d.Events) {
		return MessageSignature{}, false
	}
	return d.Events[opcode], true
}

var (
	u32 = wire.ArgUint32
	obj = wire.ArgObjectID
	nid = wire.ArgNewID
	str = wire.ArgString
	i32 = wire.ArgInt32
	fd  = wire.ArgFD
)

// WlDisplay is the always-present object at ID 1.
var WlDisplay = &InterfaceDescriptor{
	Name:    "wl_display",
	Version: 1,
	Requests: []MessageSignature{
		{Name: "sync", ArgumentTypes: wire.Signature{nid}, SinceVersion: 1},
		{Name: "get_registry", ArgumentTypes: wire.Signature{nid}, SinceVersion: 1},
	},
	Events: []MessageSignature{
		{Name: "error", ArgumentTypes: wire.Signature{obj, u32, str}, SinceVersion: 1},
		{Name: "delete_id", ArgumentTypes: wire.Signature{u32}, SinceVersion: 1},
	},
}

// WlRegistry lets a client discover and bind globals.
var WlRegistry = &InterfaceDescriptor{
	Name:    "wl_registry",
	Version: 1,
	Requests: []MessageSignature{
		{Name: "bind", ArgumentTypes: wire.Signature{u32, str, u32, nid}, SinceVersion: 1},
	},
	Events: []MessageSignature{
		{Name: "global", ArgumentTypes: wire.Signature{u32, str, u32}, SinceVersion: 1},
		{Name: "global_remove", ArgumentTypes: wire.Signature{u32}, SinceVersion: 1},
	},
}

// WlCallback is single-shot: destroyed immediately after its done event.
var WlCallback = &InterfaceDescriptor{
	Name:    "wl_callback",
	Version: 1,
	Events: []MessageSignature{
		{Name: "done", ArgumentTypes: wire.Signature{u32}, SinceVersion: 1},
	},
}

// WlCompositor creates surfaces and regions.
var WlCompositor = &InterfaceDescriptor{
	Name:    "wl_compositor",
	Version: 6,
	Requests: []MessageSignature{
		{Name: "create_surface", ArgumentTypes: wire.Signature{nid}, SinceVersion: 1},
		{Name: "create_region", ArgumentTypes: wire.Signature{nid}, SinceVersion: 1},
	},
}

// WlSurface opcodes follow the real wl_surface protocol numbering so
// the destroy opcode (0) and commit opcode (6) match upstream Wayland,
// per the "destroy opcode is interface-specific" design note.
var WlSurface = &InterfaceDescriptor{
	Name:    "wl_surface",
	Version: 6,
	Requests: []MessageSignature{
		{Name: "destroy", ArgumentTypes: wire.Signature{}, SinceVersion: 1},
		{Name: "attach", ArgumentTypes: wire.Signature{obj, i32, i32}, SinceVersion: 1},
		{Name: "damage", ArgumentTypes: wire.Signature{i32, i32, i32, i32}, SinceVersion: 1},
		{Name: "frame", ArgumentTypes: wire.Signature{nid}, SinceVersion: 1},
		{Name: "set_opaque_region", ArgumentTypes: wire.Signature{obj}, SinceVersion: 1},
		{Name: "set_input_region", ArgumentTypes: wire.Signature{obj}, SinceVersion: 1},
		{Name: "commit", ArgumentTypes: wire.Signature{}, SinceVersion: 1},
	},
	Events: []MessageSignature{
		{Name: "enter", ArgumentTypes: wire.Signature{obj}, SinceVersion: 1},
		{Name: "leave", ArgumentTypes: wire.Signature{obj}, SinceVersion: 1},
	},
}

// WlRegion accumulates rectangles for opaque/input region requests.
var WlRegion = &InterfaceDescriptor{
	Name:    "wl_region",
	Version: 1,
	Requests: []MessageSignature{
		{Name: "destroy", ArgumentTypes: wire.Signature{}, SinceVersion: 1},
		{Name: "add", ArgumentTypes: wire.Signature{i32, i32, i32, i32}, SinceVersion: 1},
		{Name: "subtract", ArgumentTypes: wire.Signature{i32, i32, i32, i32}, SinceVersion: 1},
	},
}

// Builtin is the fixed set of interfaces the core recognizes, keyed by
// name. Server deployments may extend this via a Catalog (catalog_yaml.go).
var Builtin = map[string]*InterfaceDescriptor{
	WlDisplay.Name:    WlDisplay,
	WlRegistry.Name:   WlRegistry,
	WlCallback.Name:   WlCallback,
	WlCompositor.Name: WlCompositor,
	WlSurface.Name:    WlSurface,
	WlRegion.Name:     WlRegion,
}

// WlSurface request opcodes, named for callers that build requests
// directly rather than going through the client package's helpers.
const (
	OpSurfaceDestroy = 0
	OpSurfaceAttach  = 1
	OpSurfaceDamage  = 2
	OpSurfaceFrame   = 3
	OpSurfaceCommit  = 6
)

// WlCompositor request opcodes.
const (
	OpCompositorCreateSurface = 0
	OpCompositorCreateRegion  = 1
)

// WlRegion request opcodes.
const (
	OpRegionDestroy  = 0
	OpRegionAdd      = 1
	OpRegionSubtract = 2
)

// WlRegistry opcodes.
const (
	OpRegistryBind         = 0
	OpRegistryGlobal       = 0 // event
	OpRegistryGlobalRemove = 1 // event
)

// WlDisplay opcodes.
const (
	OpDisplaySync        = 0
	OpDisplayGetRegistry = 1
	OpDisplayError       = 0 // event
	OpDisplayDeleteID    = 1 // event
)

// WlCallback opcodes.
const OpCallbackDone = 0 // event
