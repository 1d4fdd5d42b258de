package client

import (
	"fmt"

	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/proto"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// Compositor is the bound wl_compositor proxy: a factory for surfaces
// and regions.
type Compositor struct {
	client *Client
	id     uint32
}

// BindCompositor binds the "wl_compositor" global advertised by reg.
func (c *Client) BindCompositor(reg *Registry) (*Compositor, error) {
	g, ok := reg.Find("wl_compositor")
	if !ok {
		return nil, fmt.Errorf("client: wl_compositor not advertised by server")
	}
	id, err := reg.Bind(g)
	if err != nil {
		return nil, err
	}
	// Bind already installed a generic record (wl_compositor is in the
	// builtin catalog); retype it now that the concrete role is known.
	rec := &objtab.Record{ID: id, Interface: proto.WlCompositor, Kind: objtab.KindCompositor, Version: g.Version}
	c.table.Replace(rec)
	return &Compositor{client: c, id: id}, nil
}

// CreateSurface requests a new wl_surface from this compositor.
func (comp *Compositor) CreateSurface() (*Surface, error) {
	id, err := comp.client.allocID()
	if err != nil {
		return nil, err
	}
	if err := comp.client.send(comp.id, proto.OpCompositorCreateSurface, wire.NewID(id)); err != nil {
		return nil, fmt.Errorf("client: create_surface: %w", err)
	}
	state := &objtab.SurfaceState{}
	rec := &objtab.Record{ID: id, Interface: proto.WlSurface, Kind: objtab.KindSurface, Surface: state}
	if err := comp.client.table.Insert(rec); err != nil {
		return nil, fmt.Errorf("client: create_surface: %w", err)
	}
	return &Surface{client: comp.client, id: id, state: state}, nil
}

// CreateRegion requests a new wl_region from this compositor.
func (comp *Compositor) CreateRegion() (*Region, error) {
	id, err := comp.client.allocID()
	if err != nil {
		return nil, err
	}
	if err := comp.client.send(comp.id, proto.OpCompositorCreateRegion, wire.NewID(id)); err != nil {
		return nil, fmt.Errorf("client: create_region: %w", err)
	}
	rec := &objtab.Record{ID: id, Interface: proto.WlRegion, Kind: objtab.KindRegion}
	if err := comp.client.table.Insert(rec); err != nil {
		return nil, fmt.Errorf("client: create_region: %w", err)
	}
	return &Region{client: comp.client, id: id}, nil
}
