package gateway

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls into one, running the callback only
// after the delay has elapsed with no new call. Each Schedule cancels the
// pending run and supersedes earlier ones, so a callback that was already
// in flight when a newer Schedule arrived is dropped instead of delivering
// a stale result.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	timer      *time.Timer
	generation uint64
}

// NewDebouncer creates a Debouncer with the given cooldown window.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule arranges for fn to run after the cooldown window, cancelling any
// previously scheduled run.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.generation++
	gen := d.generation

	d.timer = time.AfterFunc(d.delay, func() {
		if d.isCurrent(gen) {
			fn()
		}
	})
}

// Stop cancels the pending run, if any, and invalidates every scheduled
// callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
}

func (d *Debouncer) isCurrent(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation == gen
}
