//go:build !linux || !cgo

package concurrent

// storeFence is a no-op on platforms without the cgo-backed SFENCE: the
// Go memory model's atomic store/load already provides the ordering the
// ring needs, so the stub only keeps the two build variants symmetrical.
func storeFence() {}
