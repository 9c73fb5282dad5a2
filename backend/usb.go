package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"
)

// DefaultScanInterval is the fallback delay between scans when the
// platform offers no hotplug notification mechanism.
const DefaultScanInterval = time.Second

// waiter blocks until the OS reports bus activity. Platforms without a
// notification mechanism provide no waiter and the backend falls back
// to interval polling.
type waiter interface {
	wait(ctx context.Context) error
}

// USB scans the bus through libusb (via gousb). Devices reported by
// this backend are *gousb.DeviceDesc values.
type USB struct {
	// Interval is the delay between scans used when hotplug
	// notifications are unavailable.
	Interval time.Duration

	once    sync.Once
	usbCtx  *gousb.Context
	vendor  *gousb.ID
	product *gousb.ID
	notify  waiter
}

// NewUSB creates a libusb-backed bus scanner.
func NewUSB() *USB {
	return &USB{
		Interval: DefaultScanInterval,
		notify:   newHotplugWaiter(),
	}
}

// Configure picks up the vendor/product ID filter, when present.
func (u *USB) Configure(params map[string]any) {
	if v, ok := uint16Param(params, ParamVendorID); ok {
		id := gousb.ID(v)
		u.vendor = &id
	}
	if p, ok := uint16Param(params, ParamProductID); ok {
		id := gousb.ID(p)
		u.product = &id
	}
}

func (u *USB) Supported() bool {
	// libusb is linked in at build time; if this compiled, it runs.
	return true
}

// KeyOf identifies a device by vendor/product ID plus its bus position.
// Serial numbers are left out on purpose: querying them once a second
// makes some devices freeze.
func (u *USB) KeyOf(device Device) string {
	desc := device.(*gousb.DeviceDesc)
	return fmt.Sprintf("%04X:%04X at bus %d, address %d",
		uint16(desc.Vendor), uint16(desc.Product), desc.Bus, desc.Address)
}

// Scan enumerates matching device descriptors. The libusb call runs on
// its own goroutine so the caller can abandon a stuck enumeration
// through the context.
func (u *USB) Scan(ctx context.Context) ([]Device, error) {
	u.once.Do(func() {
		u.usbCtx = gousb.NewContext()
	})

	type result struct {
		devices []Device
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		devices, err := u.enumerate()
		ch <- result{devices, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.devices, r.err
	}
}

// enumerate walks the device list without opening anything: the opener
// collects each matching descriptor and declines the open.
func (u *USB) enumerate() ([]Device, error) {
	var found []Device
	_, err := u.usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if u.vendor != nil && desc.Vendor != *u.vendor {
			return false
		}
		if u.product != nil && desc.Product != *u.product {
			return false
		}
		found = append(found, desc)
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("usb enumeration: %w", err)
	}
	return found, nil
}

// WaitUntilNextScan waits for an OS hotplug notification when one is
// available, and falls back to interval polling otherwise.
func (u *USB) WaitUntilNextScan(ctx context.Context) error {
	if u.notify != nil {
		err := u.notify.wait(ctx)
		if err == nil || ctx.Err() != nil {
			return err
		}
		// Notification source broke; poll from here on.
		u.notify = nil
	}
	return sleepCtx(ctx, u.Interval)
}

// Close releases the libusb context. The backend must not be used
// afterwards.
func (u *USB) Close() error {
	if u.usbCtx != nil {
		return u.usbCtx.Close()
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
