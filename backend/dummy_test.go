package backend

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDummy_Supported(t *testing.T) {
	if !NewDummy().Supported() {
		t.Error("dummy backend must always be supported")
	}
}

func TestDummy_KeyOf(t *testing.T) {
	d := NewDummy()
	if got := d.KeyOf("123"); got != "123" {
		t.Errorf("KeyOf(\"123\") = %q, want %q", got, "123")
	}
}

func TestDummy_ScanFindsNothing(t *testing.T) {
	d := NewDummy()
	devices, err := d.Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("Scan() returned %d devices, want 0", len(devices))
	}
}

func TestDummy_WaitBlocksUntilCancelled(t *testing.T) {
	d := NewDummy()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	waitErr := d.WaitUntilNextScan(ctx)
	if !errors.Is(waitErr, context.DeadlineExceeded) {
		t.Errorf("WaitUntilNextScan() = %v, want context.DeadlineExceeded", waitErr)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("wait took %v, should return promptly on cancellation", elapsed)
	}
}
