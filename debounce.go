// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// DefaultDebounce is the quiet period screens wait for after an event
// before reloading.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces bursts of triggers into a single call of its action,
// made once no trigger has arrived for the delay. Calls of the action never
// overlap: a call that becomes due while the action is running is made by
// the running call's goroutine once the action returns.
type Debouncer struct {
	clock  clock.Clock
	delay  time.Duration
	action func()

	mu      sync.Mutex
	timer   clock.Timer
	gen     uint64
	pending bool
	stopped bool
	running bool
	rerun   bool
}

// NewDebouncer returns a Debouncer that calls action after delay has passed
// without a trigger. A nil clock means the wall clock. The action may call
// Trigger itself; with a zero delay the new call is made after the current
// one returns.
func NewDebouncer(clk clock.Clock, delay time.Duration, action func()) *Debouncer {
	if clk == nil {
		clk = wallClock
	}
	return &Debouncer{
		clock:  clk,
		delay:  delay,
		action: action,
	}
}

// Trigger starts or restarts the quiet period. With a delay of zero or less
// the action is called straight away.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = true
	if d.delay <= 0 {
		d.pending = false
		d.mu.Unlock()
		d.run()
		return
	}
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
	d.mu.Unlock()
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A later trigger, flush or stop supersedes this timer.
	if d.stopped || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()
	d.run()
}

// Flush calls the action now if a call is pending, or once the running
// call returns.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = false
	d.mu.Unlock()
	d.run()
}

// Pending reports whether the action is waiting for the quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels any pending call. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.stopped = true
}

func (d *Debouncer) run() {
	d.mu.Lock()
	if d.running {
		d.rerun = true
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	for {
		d.action()

		d.mu.Lock()
		if !d.rerun || d.stopped {
			d.running, d.rerun = false, false
			d.mu.Unlock()
			return
		}
		d.rerun = false
		d.mu.Unlock()
	}
}
