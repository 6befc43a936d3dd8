package placement

import (
	"time"

	"sunward.gg/internal/dependencies/clock"
	"sunward.gg/internal/model"
)

// RateLimiter tracks successful placements per player over a sliding window.
// Only the engine goroutine touches it, so it carries no lock.
type RateLimiter struct {
	clock      clock.Clock
	window     time.Duration
	maxActions int

	actions map[model.PlayerID][]time.Time
}

// NewRateLimiter creates a limiter allowing maxActions per window
func NewRateLimiter(clk clock.Clock, window time.Duration, maxActions int) *RateLimiter {
	return &RateLimiter{
		clock:      clk,
		window:     window,
		maxActions: maxActions,
		actions:    make(map[model.PlayerID][]time.Time),
	}
}

// Allow reports whether the player has budget for another placement.
// It never consumes budget; call Record after the placement succeeds.
func (r *RateLimiter) Allow(player model.PlayerID) bool {
	return len(r.prune(player)) < r.maxActions
}

// Record charges one placement against the player's window
func (r *RateLimiter) Record(player model.PlayerID) {
	r.actions[player] = append(r.prune(player), r.clock.Now())
}

// Release forgets the player's window, typically on disconnect
func (r *RateLimiter) Release(player model.PlayerID) {
	delete(r.actions, player)
}

// prune drops timestamps that have slid out of the window
func (r *RateLimiter) prune(player model.PlayerID) []time.Time {
	cutoff := r.clock.Now().Add(-r.window)
	kept := r.actions[player][:0]
	for _, t := range r.actions[player] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(r.actions, player)
		return nil
	}
	r.actions[player] = kept
	return kept
}
