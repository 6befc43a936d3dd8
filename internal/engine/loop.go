package engine

import (
	"log/slog"
	"time"

	"sunward.gg/internal/dependencies/clock"
)

// Loop drives the engine at a fixed tick rate until stopped
type Loop struct {
	engine   *Engine
	clock    clock.Clock
	tickRate time.Duration
	logger   *slog.Logger

	stop chan struct{}
	done chan struct{}
}

// NewLoop creates a loop ticking the engine at tickRate
func NewLoop(e *Engine, clk clock.Clock, tickRate time.Duration, logger *slog.Logger) *Loop {
	if tickRate <= 0 {
		tickRate = DefaultConfig().TickRate
	}
	return &Loop{
		engine:   e,
		clock:    clk,
		tickRate: tickRate,
		logger:   logger.With(slog.String("component", "loop")),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the loop goroutine
func (l *Loop) Start() {
	go l.Run()
}

// Run drives the fixed-rate tick loop until Stop is called
func (l *Loop) Run() {
	defer close(l.done)

	ticker := time.NewTicker(l.tickRate)
	defer ticker.Stop()

	l.logger.Info("tick loop started", slog.Duration("tick_rate", l.tickRate))
	for {
		select {
		case <-l.stop:
			l.logger.Info("tick loop stopped", slog.Uint64("ticks", l.engine.Ticks()))
			return
		case <-ticker.C:
			l.engine.Step(l.clock.Now())
		}
	}
}

// Stop halts the loop and waits for the current tick to finish
func (l *Loop) Stop() {
	close(l.stop)
	<-l.done
}
