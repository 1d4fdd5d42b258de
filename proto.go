package wl

import "github.com/ehrlich-b/go-wl/internal/proto"

// InterfaceDescriptor is the immutable schema for one protocol interface.
type InterfaceDescriptor = proto.InterfaceDescriptor

// MessageSignature describes one request or event of an interface.
type MessageSignature = proto.MessageSignature

// Catalog is an extensible interface table: the builtin core interfaces
// plus any extensions merged in from YAML catalog files.
type Catalog = proto.Catalog

// NewCatalog returns a Catalog seeded with the builtin core interfaces
// (wl_display, wl_registry, wl_callback, wl_compositor, wl_surface,
// wl_region). Extend it with (*Catalog).LoadYAMLFile before passing it
// to a server or client.
func NewCatalog() *Catalog {
	return proto.NewCatalog()
}
