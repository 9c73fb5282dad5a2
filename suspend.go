package hotplug

import (
	"context"
	"sync"
)

// suspendGate pauses the scan loop while one or more suspensions are
// active. The counter and the latch are mutated under a single mutex;
// the latch is created whenever a suspension begins with no latch
// present and is closed exactly once, when the counter returns to
// zero.
type suspendGate struct {
	mu     sync.Mutex
	count  int
	resume chan struct{}
}

func (g *suspendGate) suspend() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.count++
	if g.resume == nil {
		g.resume = make(chan struct{})
	}
}

func (g *suspendGate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.count == 0 {
		// Unbalanced Resume; the counter never goes negative.
		return
	}
	g.count--
	if g.count == 0 && g.resume != nil {
		close(g.resume)
		g.resume = nil
	}
}

// wait blocks until no suspension is active. Waiters latch onto the
// channel that is current at the time of the check, so a release
// wakes every current waiter exactly once and a later suspension
// cannot steal the wakeup.
func (g *suspendGate) wait(ctx context.Context) error {
	g.mu.Lock()
	suspended := g.count > 0
	resume := g.resume
	g.mu.Unlock()

	if !suspended {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-resume:
		return nil
	}
}

// Suspend pauses the detector before its next scan. Suspensions nest:
// every Suspend must be matched by a Resume before scanning continues.
// A scan already in flight is allowed to complete.
func (d *Detector) Suspend() {
	d.gate.suspend()
}

// Resume undoes one Suspend. When the last suspension is lifted, all
// paused scan loops continue. Calling Resume without a matching
// Suspend does nothing.
func (d *Detector) Resume() {
	d.gate.release()
}

// Suspended runs fn with the detector suspended, resuming on every
// return path.
func (d *Detector) Suspended(fn func() error) error {
	d.Suspend()
	defer d.Resume()
	return fn()
}
