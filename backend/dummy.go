package backend

import (
	"context"
	"fmt"
)

// Dummy is a bus scanner that never detects anything. It exists for
// tests and for environments where hotplug detection should be wired
// in but silently disabled.
type Dummy struct{}

// NewDummy creates a new no-op bus scanner.
func NewDummy() *Dummy {
	return &Dummy{}
}

func (d *Dummy) Configure(params map[string]any) {}

func (d *Dummy) Supported() bool {
	return true
}

func (d *Dummy) KeyOf(device Device) string {
	return fmt.Sprint(device)
}

// Scan always returns an empty bus.
func (d *Dummy) Scan(ctx context.Context) ([]Device, error) {
	return nil, ctx.Err()
}

// WaitUntilNextScan blocks until the context is cancelled; there is
// never a reason to rescan an empty bus.
func (d *Dummy) WaitUntilNextScan(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
