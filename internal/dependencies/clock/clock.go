package clock

import "time"

// Clock provides time operations that can be mocked for testing.
// Everything time-dependent in the simulation reads through it so tests can
// drive decay, cooldowns and rate-limit windows deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system clock
type SystemClock struct{}

// NewSystem creates a Clock backed by real system time
func NewSystem() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time
func (c *SystemClock) Now() time.Time {
	return time.Now()
}
