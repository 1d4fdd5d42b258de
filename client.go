package wl

import (
	"github.com/ehrlich-b/go-wl/internal/client"
)

// Client is one connection to a Wayland server.
type Client = client.Client

// ClientOptions configures a new Client.
type ClientOptions = client.Options

// Registry is the client's view of the server's advertised globals.
type Registry = client.Registry

// Global is one entry in the registry's globals map.
type Global = client.Global

// Compositor is the bound wl_compositor proxy.
type Compositor = client.Compositor

// Surface is the client-side wl_surface proxy.
type Surface = client.Surface

// Region is the client-side wl_region proxy.
type Region = client.Region

// ProtocolError carries a wl_display.error event received from the server.
type ProtocolError = client.ProtocolError

// Connect dials the Wayland socket and returns a ready Client. An empty
// path resolves $WAYLAND_DISPLAY/$XDG_RUNTIME_DIR the way every Wayland
// client does (defaulting the display name to "wayland-0").
func Connect(path string, opts ClientOptions) (*Client, error) {
	cl, err := client.Connect(path, opts)
	if err != nil {
		return nil, WrapError("connect", err)
	}
	return cl, nil
}
