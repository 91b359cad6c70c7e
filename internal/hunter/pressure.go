package hunter

import (
	"sync"
	"time"
)

// PressureTracker counts recent qualifying buy orders per symbol inside a
// rolling time window. Pressure is short-horizon state: it is never
// persisted across restarts.
type PressureTracker struct {
	mu     sync.Mutex
	window time.Duration
	hits   map[string][]time.Time
}

// NewPressureTracker creates a tracker with the given rolling window.
func NewPressureTracker(window time.Duration) *PressureTracker {
	return &PressureTracker{
		window: window,
		hits:   make(map[string][]time.Time),
	}
}

// Record registers a qualifying buy at now and returns the pressure count:
// the number of recorded buys (including this one) inside the window.
func (p *PressureTracker) Record(symbol string, now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := pruneBefore(p.hits[symbol], now.Add(-p.window))
	kept = append(kept, now)
	p.hits[symbol] = kept
	return len(kept)
}

// Count returns the current pressure for symbol without recording a hit.
func (p *PressureTracker) Count(symbol string, now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := pruneBefore(p.hits[symbol], now.Add(-p.window))
	p.hits[symbol] = kept
	return len(kept)
}

// Prune drops every symbol whose entire window has expired. Called from
// the maintenance timer to keep the map from growing over a session.
func (p *PressureTracker) Prune(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cutoff := now.Add(-p.window)
	for sym, ts := range p.hits {
		kept := pruneBefore(ts, cutoff)
		if len(kept) == 0 {
			delete(p.hits, sym)
		} else {
			p.hits[sym] = kept
		}
	}
}

// pruneBefore drops timestamps at or before cutoff. Timestamps arrive in
// order, so a single scan for the first survivor suffices.
func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(ts); i++ {
		if ts[i].After(cutoff) {
			break
		}
	}
	return append([]time.Time(nil), ts[i:]...)
}
