// Package debounce decouples high-frequency edit notifications from
// publishing to the shared store. Every edit resets a countdown; only when
// no edit has occurred for the quiet interval does the latest text get
// published — a trailing-edge debounce, not throttling. A stopped
// debouncer never fires again, which is what prevents a publish racing
// against a torn-down playground view.
package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultQuiet is the quiet interval used when the caller passes a
// non-positive duration.
const DefaultQuiet = 750 * time.Millisecond

// PublishFunc receives the buffer's full text once the quiet interval
// elapses without further edits.
type PublishFunc func(text string)

// Debouncer holds at most one pending publish. Safe for concurrent use.
type Debouncer struct {
	quiet   time.Duration
	publish PublishFunc

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	stopped bool
	// gen increments on every Edit. A countdown that expired for an
	// earlier generation finds gen moved on and discards its publish,
	// so an edit landing just as the timer fires cannot cause an early
	// or doubled publish.
	gen uint64
}

// New creates a debouncer bound to ctx: when ctx is cancelled the
// debouncer stops and any pending publish is discarded. Stop may also be
// called directly; both paths guarantee no publish after teardown.
func New(ctx context.Context, quiet time.Duration, publish PublishFunc) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}

	d := &Debouncer{
		quiet:   quiet,
		publish: publish,
	}

	if ctx != nil {
		go func() {
			<-ctx.Done()
			d.Stop()
		}()
	}

	return d
}

// Edit records the buffer's current full text and restarts the countdown.
// Exactly one publish happens per quiet period regardless of how many
// edits occurred during it, timed from the last edit.
func (d *Debouncer) Edit(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = text
	d.gen++
	gen := d.gen

	// A fresh timer per edit rather than Reset: a timer that already
	// expired has a fire in flight, and resetting it would let that
	// stale fire publish the new text before its quiet period.
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen) })
}

// fire runs on the timer goroutine once the countdown elapses. Only the
// countdown belonging to the latest edit publishes.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	text := d.pending
	d.timer = nil
	d.mu.Unlock()

	d.publish(text)
}

// Stop cancels any pending publish and puts the debouncer out of service.
// A timer that already expired but has not yet acquired the lock observes
// stopped and discards its publish. Idempotent.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
