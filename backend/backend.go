// Package backend defines the bus scanner capability that the hotplug
// detector drives, along with the concrete scanner implementations.
//
// A backend knows how to enumerate the devices currently on the bus,
// how to derive a stable identity key for each of them, and when the
// next scan is due. The detector never interprets devices itself; it
// only diffs the keys between consecutive scans.
package backend

import (
	"context"
	"errors"
)

// Device is an opaque, backend-defined handle for a physical device.
// Consumers that need device details must assert the concrete type
// documented by the backend that produced it.
type Device = any

// Configuration parameter keys understood by the bundled backends.
const (
	ParamVendorID  = "vendor_id"
	ParamProductID = "product_id"
)

// ErrNoBackend is returned by Choose when no bus scanner is usable on
// the current platform.
var ErrNoBackend = errors.New("no suitable USB bus scanner backend for this platform")

// Backend scans a bus for devices and signals when to scan again.
//
// Scan and WaitUntilNextScan may block; both must honor context
// cancellation so the detector loop can be torn down promptly.
type Backend interface {
	// Configure specifies which devices the backend should report.
	// It is called once, before the first scan. The backend owns the
	// map afterwards; callers must not retain it.
	Configure(params map[string]any)

	// Supported reports whether the backend can run on this platform.
	Supported() bool

	// KeyOf returns the identity key for a device. The key must be
	// stable for the same physical device across consecutive scans
	// while it stays connected, and unique among simultaneously
	// connected devices. Volatile attributes (serial number queries
	// and the like) must not be part of the key.
	KeyOf(device Device) string

	// Scan enumerates the devices currently on the bus.
	Scan(ctx context.Context) ([]Device, error)

	// WaitUntilNextScan blocks until the next scan is due. The
	// backend decides the trigger: a fixed interval, an OS hotplug
	// notification, or anything in between.
	WaitUntilNextScan(ctx context.Context) error
}

// Choose probes the bundled backends in preference order and returns
// the first one supported on the current platform. The dummy backend
// is never chosen implicitly; construct it explicitly if a no-op
// scanner is what you want.
func Choose() (Backend, error) {
	for _, b := range []Backend{NewUSB(), NewHID()} {
		if b.Supported() {
			return b, nil
		}
	}
	return nil, ErrNoBackend
}

// uint16Param extracts a parameter that may have been stored as any of
// the integer widths the factory and config layers produce.
func uint16Param(params map[string]any, key string) (uint16, bool) {
	switch v := params[key].(type) {
	case uint16:
		return v, true
	case int:
		if v >= 0 && v <= 0xffff {
			return uint16(v), true
		}
	case uint32:
		if v <= 0xffff {
			return uint16(v), true
		}
	case int64:
		if v >= 0 && v <= 0xffff {
			return uint16(v), true
		}
	}
	return 0, false
}
