package listing

import (
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiet period before a search input is committed.
const DefaultSearchDebounce = 500 * time.Millisecond

// Debouncer emits the last pushed value once it has stayed unchanged for the
// quiet period. Every Push before expiry restarts the timer.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	emit    func(value string)
	timer   *time.Timer
	gen     uint64
	pending *string
	stopped bool
}

// NewDebouncer returns a debouncer calling emit on its own goroutine. A delay <= 0
// emits synchronously from Push.
func NewDebouncer(delay time.Duration, emit func(value string)) *Debouncer {
	return &Debouncer{delay: delay, emit: emit}
}

func (d *Debouncer) Push(value string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.delay <= 0 {
		d.pending = nil
		d.mu.Unlock()
		d.emit(value)
		return
	}

	gen := d.gen
	d.pending = &value
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
	d.mu.Unlock()
}

// fire emits the pending value unless a newer push or Stop superseded timer gen.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	value := *d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	d.emit(value)
}

// Flush emits the pending value now, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || d.pending == nil {
		d.mu.Unlock()
		return
	}
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	value := *d.pending
	d.pending = nil
	d.mu.Unlock()

	d.emit(value)
}

// Stop drops any pending value. Later pushes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
