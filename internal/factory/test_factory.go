package factory

import (
	"io"
	"log/slog"
	"time"

	"sunward.gg/internal/config"
	"sunward.gg/internal/dependencies/mocks"
	"sunward.gg/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The simulation loop is not started; tests drive ticks through
// App.Engine.Step.
func NewTestApp(cfg config.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, cfg, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// StepFor advances the mock clock in tick-sized increments, stepping the
// engine at each one, as the loop would in production.
func (t *TestApp) StepFor(d time.Duration) {
	tick := t.Config.TickRate()
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	for elapsed := time.Duration(0); elapsed < d; elapsed += tick {
		t.MockClock.Advance(tick)
		t.Engine.Step(t.MockClock.Now())
	}
}
