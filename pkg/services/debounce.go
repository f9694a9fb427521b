package services

import (
	"sync"
	"time"
)

// Task is a scheduled call that can be stopped before it runs.
type Task interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// ClockScheduler schedules on real timers.
var ClockScheduler Scheduler = clockScheduler{}

// Debouncer runs the most recently triggered function once the delay passes
// without another Trigger. Superseded functions never run, even when their
// timer already fired.
type Debouncer struct {
	scheduler Scheduler
	delay     time.Duration

	mu   sync.Mutex
	task Task
	gen  uint64
}

func NewDebouncer(scheduler Scheduler, delay time.Duration) *Debouncer {
	if scheduler == nil {
		scheduler = ClockScheduler
	}
	return &Debouncer{scheduler: scheduler, delay: delay}
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.gen
	d.task = d.scheduler.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.task = nil
		d.mu.Unlock()
		f()
	})
}

// Cancel drops the pending function, if any. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.task != nil
	d.stopLocked()
	return pending
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.task != nil
}

func (d *Debouncer) stopLocked() {
	d.gen++
	if d.task != nil {
		d.task.Stop()
		d.task = nil
	}
}
