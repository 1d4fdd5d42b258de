//go:build !giouring
// +build !giouring

package server

import (
	"context"
	"errors"
)

// ErrReactorUnavailable is returned by AcceptLoopReactor when the binary
// was built without -tags giouring.
var ErrReactorUnavailable = errors.New("server: io_uring reactor not enabled; build with -tags giouring")

// AcceptLoopReactor is available when built with -tags giouring. The
// default build serves clients with one goroutine per connection via
// AcceptLoop instead.
func (l *Listening) AcceptLoopReactor(ctx context.Context) error {
	return ErrReactorUnavailable
}
