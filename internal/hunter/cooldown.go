package hunter

import (
	"sync"
	"time"

	"github.com/lordfcde/sharkwatch/internal/model"
)

// cooldownGC is how stale a cooldown entry must be before pruning removes
// it. Well beyond any cooldown interval in use.
const cooldownGC = 2 * time.Hour

type cooldownKey struct {
	Symbol string
	Side   model.Side
}

// CooldownGate enforces the per-(symbol, side) alert cooldown. TryAcquire
// is an atomic check-and-set: the winning caller both passes the gate and
// stamps the cooldown in one critical section, so two ticks racing within
// microseconds cannot both fire.
type CooldownGate struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[cooldownKey]time.Time
}

// NewCooldownGate creates a gate with the given cooldown interval.
func NewCooldownGate(interval time.Duration) *CooldownGate {
	return &CooldownGate{
		interval: interval,
		last:     make(map[cooldownKey]time.Time),
	}
}

// TryAcquire returns true and stamps now if the cooldown for
// (symbol, side) has elapsed. Callers must acquire BEFORE dispatching any
// async work; the stamp is what prevents duplicate concurrent judgments.
func (c *CooldownGate) TryAcquire(symbol string, side model.Side, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cooldownKey{Symbol: symbol, Side: side}
	if last, ok := c.last[key]; ok && now.Sub(last) < c.interval {
		return false
	}
	c.last[key] = now
	return true
}

// Remaining returns how long until the gate reopens for (symbol, side).
// Zero means the gate is open.
func (c *CooldownGate) Remaining(symbol string, side model.Side, now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.last[cooldownKey{Symbol: symbol, Side: side}]
	if !ok {
		return 0
	}
	if rem := c.interval - now.Sub(last); rem > 0 {
		return rem
	}
	return 0
}

// Prune garbage-collects entries old enough to be irrelevant.
func (c *CooldownGate) Prune(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, last := range c.last {
		if now.Sub(last) > cooldownGC {
			delete(c.last, key)
		}
	}
}
