package draft

import (
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
)

// Debouncer delays a write until no new snapshot has been scheduled for the
// configured delay. Only the latest snapshot is ever written.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	write     func(*domain.Draft)
	timer     *time.Timer
	pending   *domain.Draft
	gen       uint64
	suspended bool
	stopped   bool
	inflight  sync.WaitGroup
}

func NewDebouncer(delay time.Duration, write func(*domain.Draft)) *Debouncer {
	return &Debouncer{delay: delay, write: write}
}

// Schedule replaces the pending snapshot and restarts the timer. It reports
// false when the debouncer is suspended or stopped.
func (d *Debouncer) Schedule(snapshot *domain.Draft) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || d.suspended {
		return false
	}
	d.pending = snapshot
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
	return true
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// a newer Schedule or a Cancel superseded this timer
	if gen != d.gen || d.stopped || d.suspended || d.pending == nil {
		d.mu.Unlock()
		return
	}
	snapshot := d.pending
	d.pending = nil
	d.timer = nil
	d.inflight.Add(1)
	d.mu.Unlock()

	defer d.inflight.Done()
	d.write(snapshot)
}

// Cancel drops the pending write, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Debouncer) cancelLocked() {
	d.gen++
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Suspend cancels the pending write and ignores Schedule until Resume. It
// returns once a write that already started has finished.
func (d *Debouncer) Suspend() {
	d.mu.Lock()
	d.suspended = true
	d.cancelLocked()
	d.mu.Unlock()
	d.inflight.Wait()
}

func (d *Debouncer) Resume() {
	d.mu.Lock()
	d.suspended = false
	d.mu.Unlock()
}

func (d *Debouncer) Suspended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suspended
}

// Stop is final, Schedule is a no-op afterwards. Like Suspend it waits for
// an in-flight write.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.cancelLocked()
	d.mu.Unlock()
	d.inflight.Wait()
}
