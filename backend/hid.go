package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/karalabe/hid"
)

// HID scans for HID-class devices through the hidapi library. It sees
// less of the bus than the libusb backend but works without elevated
// privileges on most platforms. Devices reported by this backend are
// hid.DeviceInfo values.
type HID struct {
	// Interval is the delay between scans. hidapi has no hotplug
	// notification mechanism, so this backend always polls.
	Interval time.Duration

	vendorID  uint16
	productID uint16
}

// NewHID creates a hidapi-backed bus scanner.
func NewHID() *HID {
	return &HID{Interval: DefaultScanInterval}
}

// Configure picks up the vendor/product ID filter, when present.
// A zero ID matches any device, mirroring hidapi's own wildcard.
func (h *HID) Configure(params map[string]any) {
	if v, ok := uint16Param(params, ParamVendorID); ok {
		h.vendorID = v
	}
	if p, ok := uint16Param(params, ParamProductID); ok {
		h.productID = p
	}
}

func (h *HID) Supported() bool {
	return hid.Supported()
}

// KeyOf identifies a device by vendor/product ID plus its platform
// path, which encodes the bus position for as long as the device
// stays connected.
func (h *HID) KeyOf(device Device) string {
	info := device.(hid.DeviceInfo)
	return fmt.Sprintf("%04X:%04X at %s", info.VendorID, info.ProductID, info.Path)
}

// Scan enumerates matching HID devices on a worker goroutine so a
// stuck hidapi call cannot wedge the caller.
func (h *HID) Scan(ctx context.Context) ([]Device, error) {
	type result struct {
		devices []Device
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		infos, err := hid.Enumerate(h.vendorID, h.productID)
		if err != nil {
			ch <- result{nil, fmt.Errorf("hid enumeration: %w", err)}
			return
		}
		devices := make([]Device, len(infos))
		for i, info := range infos {
			devices[i] = info
		}
		ch <- result{devices, nil}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.devices, r.err
	}
}

func (h *HID) WaitUntilNextScan(ctx context.Context) error {
	return sleepCtx(ctx, h.Interval)
}
