// Package ringbuf provides a fixed-capacity history ring for
// model.TradeEvent. New entries overwrite the oldest once full, so the
// reporting side-channel is bounded no matter how busy the tape gets.
// Not self-synchronizing: callers guard it with their own lock.
package ringbuf

import "github.com/lordfcde/sharkwatch/internal/model"

// Ring is a bounded overwrite-oldest buffer of trade events.
type Ring struct {
	buf   []model.TradeEvent
	head  int // next write position
	count int
	// Overwrites since creation, for metrics.
	overwritten uint64
}

// New creates a ring buffer. Minimum capacity is 1.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]model.TradeEvent, capacity)}
}

// Push appends an event, overwriting the oldest entry when full.
func (r *Ring) Push(ev model.TradeEvent) {
	if r.count == len(r.buf) {
		r.overwritten++
	} else {
		r.count++
	}
	r.buf[r.head] = ev
	r.head = (r.head + 1) % len(r.buf)
}

// Len returns the number of events currently held.
func (r *Ring) Len() int { return r.count }

// Cap returns the buffer capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Overwritten returns the total number of entries displaced by Push.
func (r *Ring) Overwritten() uint64 { return r.overwritten }

// Snapshot returns the held events oldest-first. The returned slice is a
// copy; mutating it does not affect the ring.
func (r *Ring) Snapshot() []model.TradeEvent {
	out := make([]model.TradeEvent, 0, r.count)
	start := r.head - r.count
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Reset drops all held events. The overwrite counter is preserved.
func (r *Ring) Reset() {
	r.head = 0
	r.count = 0
}
