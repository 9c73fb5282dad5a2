package hotplug

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ntamas/aio-usb-hotplug/backend"
)

// TaskFunc is the work to run for one connected device. The context is
// cancelled when the device is removed (for cancellable runs) or when
// the whole supervision scope shuts down.
type TaskFunc func(ctx context.Context, device backend.Device) error

// RunOption configures RunForEachDevice.
type RunOption func(*runConfig)

type runConfig struct {
	predicate   func(backend.Device) bool
	cancellable bool
}

// WithPredicate spawns tasks only for devices the predicate accepts.
func WithPredicate(predicate func(backend.Device) bool) RunOption {
	return func(c *runConfig) {
		c.predicate = predicate
	}
}

// NotCancellable lets a task run to its own completion even when its
// device is removed. By default removal cancels the task.
func NotCancellable() RunOption {
	return func(c *runConfig) {
		c.cancellable = false
	}
}

// RunForEachDevice consumes the event stream and keeps exactly one
// task running per currently present device key.
//
// An Added event spawns a task unless one is still registered for that
// key; a Removed event cancels the task (unless NotCancellable). A
// task's registry entry is cleared when it terminates, however it
// terminates, so the key becomes spawnable again. Cancellation caused
// by device removal is not a failure; any other task failure cancels
// the whole scope, and RunForEachDevice waits for every outstanding
// task before returning the failure.
func (d *Detector) RunForEachDevice(ctx context.Context, task TaskFunc, opts ...RunOption) error {
	cfg := runConfig{cancellable: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	var (
		mu sync.Mutex
		// A nil entry marks a running task that removal must not
		// cancel.
		running = make(map[string]context.CancelFunc)
	)

	stream := d.Events(groupCtx)
	for event := range stream.C() {
		switch event.Type {
		case DeviceAdded:
			if cfg.predicate != nil && !cfg.predicate(event.Device) {
				continue
			}
			mu.Lock()
			if _, ok := running[event.Key]; ok {
				// The previous task for this key has not finished
				// its cleanup yet; never spawn a duplicate.
				mu.Unlock()
				continue
			}
			taskCtx, cancel := context.WithCancel(groupCtx)
			if cfg.cancellable {
				running[event.Key] = cancel
			} else {
				running[event.Key] = nil
			}
			mu.Unlock()

			key, device := event.Key, event.Device
			d.logger.Debug("spawning device task", "key", key)
			group.Go(func() error {
				defer func() {
					mu.Lock()
					delete(running, key)
					mu.Unlock()
					cancel()
				}()
				err := task(taskCtx, device)
				if err != nil && errors.Is(err, context.Canceled) &&
					taskCtx.Err() != nil && groupCtx.Err() == nil {
					// Cancelled because the device went away; that is
					// the expected outcome, not a failure.
					return nil
				}
				return err
			})

		case DeviceRemoved:
			mu.Lock()
			cancel := running[event.Key]
			mu.Unlock()
			if cancel != nil {
				d.logger.Debug("cancelling device task", "key", event.Key)
				cancel()
			}
		}
	}

	return errors.Join(group.Wait(), stream.Err())
}
