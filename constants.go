package wl

import (
	"github.com/ehrlich-b/go-wl/internal/constants"
	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// Re-export constants for public API
const (
	DefaultClientDisplay = constants.DefaultClientDisplay
	DefaultServerDisplay = constants.DefaultServerDisplay
	MaxFDsPerMessage     = constants.MaxFDsPerMessage

	// MaxMessageSize is the largest wire message the u16 length field
	// can encode, header included.
	MaxMessageSize = wire.MaxMessageSize

	// DisplayObjectID is the reserved object ID of the wl_display
	// singleton on every connection.
	DisplayObjectID = objtab.DisplayObjectID

	// ClientIDMax and ServerIDMin delimit the two non-overlapping object
	// ID ranges of a connection: client-allocated IDs in [1, ClientIDMax],
	// server-allocated IDs in [ServerIDMin, 0xFFFFFFFF].
	ClientIDMax = objtab.ClientIDMax
	ServerIDMin = objtab.ServerIDMin
)
