package hotplug

import (
	"context"
	"errors"
	"fmt"

	"github.com/ntamas/aio-usb-hotplug/backend"
)

// Stream is a lazy, non-restartable sequence of hotplug events.
//
// Events arrive on C until the stream ends: either its context was
// cancelled (Err returns nil) or a scan failed (Err returns the
// failure). Err must only be called after C is closed.
type Stream struct {
	events chan Event
	err    error
}

// C returns the event channel. It is closed when the stream ends.
func (s *Stream) C() <-chan Event {
	return s.events
}

// Err returns the terminal failure of the stream, if any. The result
// is meaningful only after C has been closed.
func (s *Stream) Err() error {
	return s.err
}

// DeviceStream is a Stream projected down to the device handles of a
// single event type.
type DeviceStream struct {
	devices chan backend.Device
	inner   *Stream
}

// C returns the device channel. It is closed when the stream ends.
func (s *DeviceStream) C() <-chan backend.Device {
	return s.devices
}

// Err returns the terminal failure of the underlying stream, if any.
// The result is meaningful only after C has been closed.
func (s *DeviceStream) Err() error {
	return s.inner.Err()
}

// Events starts the scan loop and returns the full event stream. The
// loop runs until ctx is cancelled or a scan fails.
func (d *Detector) Events(ctx context.Context) *Stream {
	s := &Stream{events: make(chan Event)}
	go func() {
		defer close(s.events)
		err := d.run(ctx, s.events)
		if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
			s.err = err
		}
	}()
	return s
}

// AddedDevices returns a stream of the device handles whose addition
// was detected. Removals are not reported.
func (d *Detector) AddedDevices(ctx context.Context) *DeviceStream {
	return d.filtered(ctx, DeviceAdded)
}

// RemovedDevices returns a stream of the device handles whose removal
// was detected. Additions are not reported.
func (d *Detector) RemovedDevices(ctx context.Context) *DeviceStream {
	return d.filtered(ctx, DeviceRemoved)
}

func (d *Detector) filtered(ctx context.Context, want EventType) *DeviceStream {
	inner := d.Events(ctx)
	s := &DeviceStream{devices: make(chan backend.Device), inner: inner}
	go func() {
		defer close(s.devices)
		for event := range inner.C() {
			if event.Type != want {
				continue
			}
			select {
			case s.devices <- event.Device:
			case <-ctx.Done():
				return
			}
		}
	}()
	return s
}

// run is the scan-diff loop. The active set lives entirely inside this
// goroutine; nothing else ever touches it. activeOrder tracks map
// insertion order so that emission order is deterministic for a run
// (Go map iteration is randomized).
func (d *Detector) run(ctx context.Context, out chan<- Event) error {
	d.configureBackend()

	active := make(map[string]backend.Device)
	var activeOrder []string

	d.logger.Debug("hotplug detection started")

	for {
		// The gate is only checked here, at the top of an iteration;
		// a scan already in flight always completes.
		if err := d.gate.wait(ctx); err != nil {
			return err
		}

		devices, err := d.backend.Scan(ctx)
		if err != nil {
			if ctx.Err() == nil {
				d.logger.Error("bus scan failed", "error", err)
			}
			return fmt.Errorf("bus scan: %w", err)
		}

		// Partition the scan result into keys we already track and
		// fresh ones. Duplicate keys within one scan collapse to the
		// last occurrence.
		seen := make(map[string]bool)
		added := make(map[string]backend.Device)
		var addedOrder []string
		for _, device := range devices {
			key := d.backend.KeyOf(device)
			if _, ok := active[key]; ok {
				seen[key] = true
				continue
			}
			if _, dup := added[key]; !dup {
				addedOrder = append(addedOrder, key)
			}
			added[key] = device
		}

		// Anything tracked but no longer seen is gone. Keep the last
		// known handle for the removal event.
		var removedKeys []string
		var removedDevices []backend.Device
		kept := activeOrder[:0]
		for _, key := range activeOrder {
			if seen[key] {
				kept = append(kept, key)
				continue
			}
			removedKeys = append(removedKeys, key)
			removedDevices = append(removedDevices, active[key])
			delete(active, key)
		}
		activeOrder = append(kept, addedOrder...)
		for key, device := range added {
			active[key] = device
		}

		// All removals before all additions, always.
		for i, key := range removedKeys {
			d.logger.Debug("device removed", "key", key)
			if err := emit(ctx, out, Event{Type: DeviceRemoved, Device: removedDevices[i], Key: key}); err != nil {
				return err
			}
		}
		for _, key := range addedOrder {
			d.logger.Debug("device added", "key", key)
			if err := emit(ctx, out, Event{Type: DeviceAdded, Device: added[key], Key: key}); err != nil {
				return err
			}
		}

		if err := d.backend.WaitUntilNextScan(ctx); err != nil {
			return err
		}
	}
}

func emit(ctx context.Context, out chan<- Event, event Event) error {
	select {
	case out <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
