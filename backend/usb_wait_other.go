//go:build !linux || !cgo

package backend

// newHotplugWaiter returns nil on platforms without a hotplug
// notification mechanism; the USB backend falls back to interval
// polling.
func newHotplugWaiter() waiter {
	return nil
}
