// Package hotplug detects USB device attach and detach events by
// repeatedly scanning the bus through a pluggable backend and diffing
// the result against previously observed state.
//
// A Detector produces a lazy, non-restartable stream of events.
// Applications that want one worker per connected device can skip the
// stream handling entirely and use RunForEachDevice, which supervises
// a task per present device and optionally cancels it on removal.
package hotplug

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/ntamas/aio-usb-hotplug/backend"
)

// EventType classifies a hotplug event.
type EventType int

const (
	DeviceAdded EventType = iota
	DeviceRemoved
)

func (t EventType) String() string {
	switch t {
	case DeviceAdded:
		return "added"
	case DeviceRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event describes a single device appearing on or disappearing from
// the bus. Events are immutable once emitted.
type Event struct {
	Type   EventType
	Device backend.Device
	Key    string
}

// Detector continuously scans the bus for devices matching a set of
// backend parameters and reports additions and removals.
//
// Each call to Events, AddedDevices or RemovedDevices starts an
// independent scan loop with its own empty state; streams never share
// an iteration. A stream ends when its context is cancelled or when a
// scan fails.
type Detector struct {
	backend backend.Backend
	params  map[string]any
	logger  *slog.Logger
	gate    suspendGate

	configureOnce sync.Once
}

// configureBackend hands the filter parameters to the backend exactly
// once, before the first scan loop starts.
func (d *Detector) configureBackend() {
	d.configureOnce.Do(func() {
		d.backend.Configure(d.params)
	})
}

// Option configures a Detector.
type Option func(*Detector)

// WithBackend overrides backend autodetection.
func WithBackend(b backend.Backend) Option {
	return func(d *Detector) {
		d.backend = b
	}
}

// WithLogger attaches a logger; by default the detector is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// New creates a detector for devices matching the given backend
// parameters. With no WithBackend option, the backend is chosen by a
// platform capability probe; New fails with backend.ErrNoBackend when
// none is usable.
func New(params map[string]any, opts ...Option) (*Detector, error) {
	d := &Detector{
		params: make(map[string]any, len(params)),
		logger: slog.New(slog.DiscardHandler),
	}
	for k, v := range params {
		d.params[k] = v
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.backend == nil {
		b, err := backend.Choose()
		if err != nil {
			return nil, err
		}
		d.backend = b
	}
	return d, nil
}

// ForDevice creates a detector for a single vendor/product ID pair.
// Each ID may be a hexadecimal string ("0402", "0x1050") or an
// integer; both are normalized to integers before configuring the
// backend.
func ForDevice(vid, pid any, opts ...Option) (*Detector, error) {
	vendor, err := ParseID(vid)
	if err != nil {
		return nil, fmt.Errorf("vendor ID: %w", err)
	}
	product, err := ParseID(pid)
	if err != nil {
		return nil, fmt.Errorf("product ID: %w", err)
	}
	return New(map[string]any{
		backend.ParamVendorID:  vendor,
		backend.ParamProductID: product,
	}, opts...)
}

// Backend returns the bus scanner this detector drives.
func (d *Detector) Backend() backend.Backend {
	return d.backend
}

// ParseID converts a vendor or product ID, given either in hexadecimal
// notation as a string or as an integer, to its uint16 representation.
func ParseID(value any) (uint16, error) {
	switch v := value.(type) {
	case string:
		s := strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
		id, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid ID %q: %w", v, err)
		}
		return uint16(id), nil
	case uint16:
		return v, nil
	case int:
		if v < 0 || v > 0xffff {
			return 0, fmt.Errorf("ID %d out of range", v)
		}
		return uint16(v), nil
	default:
		return 0, fmt.Errorf("unsupported ID type %T", value)
	}
}
