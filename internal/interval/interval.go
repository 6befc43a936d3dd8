// Package interval provides the elapsed-time gating used by every periodic
// pass and cooldown in the simulation.
package interval

import "time"

// Elapsed reports whether at least interval has passed between last and now.
// A zero last time always counts as elapsed, so fresh state fires on its
// first check.
func Elapsed(now, last time.Time, interval time.Duration) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= interval
}

// Gate guards a periodic pass so it runs at most once per interval. The tick
// loop polls Due every tick. When the loop falls behind, the gate re-anchors
// at the firing tick and the pass runs once; there is no catch-up burst.
type Gate struct {
	interval time.Duration
	last     time.Time
}

// NewGate creates a gate that first fires on its next check
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Due reports whether the gated pass should run at now, advancing the gate
// when it does
func (g *Gate) Due(now time.Time) bool {
	if !Elapsed(now, g.last, g.interval) {
		return false
	}
	g.last = now
	return true
}

// Interval returns the configured interval
func (g *Gate) Interval() time.Duration {
	return g.interval
}
