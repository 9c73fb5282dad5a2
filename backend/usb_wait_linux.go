//go:build linux && cgo

package backend

import (
	"context"
	"errors"
	"time"

	"github.com/jochenvg/go-udev"
)

// settleDelay is how long the bus must stay quiet after a uevent
// before a rescan is triggered. A single physical plug produces a
// burst of uevents (one per interface); without the settle window each
// of them would cost a full scan.
const settleDelay = 500 * time.Millisecond

// newHotplugWaiter returns a udev netlink waiter on Linux.
func newHotplugWaiter() waiter {
	return &udevWaiter{}
}

type udevWaiter struct{}

func (w *udevWaiter) wait(ctx context.Context) error {
	u := udev.Udev{}
	m := u.NewMonitorFromNetlink("udev")
	if m == nil {
		return errors.New("udev: netlink monitor unavailable")
	}
	if err := m.FilterAddMatchSubsystemDevtype("usb", "usb_device"); err != nil {
		return err
	}

	// DeviceChan tears down the monitor goroutine when this context
	// is cancelled.
	monCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := m.DeviceChan(monCtx)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case _, ok := <-ch:
		if !ok {
			return errors.New("udev: monitor channel closed")
		}
	}

	// Drain follow-up uevents until the bus settles down.
	settle := time.NewTimer(settleDelay)
	defer settle.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-settle.C:
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			if !settle.Stop() {
				<-settle.C
			}
			settle.Reset(settleDelay)
		}
	}
}
