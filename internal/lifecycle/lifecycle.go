// Package lifecycle starts and stops the server's long-lived components in a
// fixed order: Init and Start walk the list forward, Stop walks it backward.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Component is anything with a managed lifecycle. Init must leave the
// component ready to serve, Start may spawn goroutines, Stop must release
// everything and may be called only after a successful Start.
type Component interface {
	Name() string
	Init(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner drives a list of components through their lifecycle
type Runner struct {
	logger     *slog.Logger
	components []Component
	started    []Component
}

// NewRunner creates a runner over the components, in start order
func NewRunner(logger *slog.Logger, components ...Component) *Runner {
	return &Runner{
		logger:     logger.With(slog.String("component", "lifecycle")),
		components: components,
	}
}

// Init initializes every component in order, aborting on the first failure
func (r *Runner) Init(ctx context.Context) error {
	for _, c := range r.components {
		if err := c.Init(ctx); err != nil {
			return fmt.Errorf("init %s: %w", c.Name(), err)
		}
		r.logger.Debug("component initialized", slog.String("name", c.Name()))
	}
	return nil
}

// Start starts every component in order. If one fails, the components
// already running are stopped in reverse before the error returns.
func (r *Runner) Start(ctx context.Context) error {
	for _, c := range r.components {
		if err := c.Start(ctx); err != nil {
			startErr := fmt.Errorf("start %s: %w", c.Name(), err)
			if stopErr := r.Stop(ctx); stopErr != nil {
				return errors.Join(startErr, stopErr)
			}
			return startErr
		}
		r.started = append(r.started, c)
		r.logger.Info("component started", slog.String("name", c.Name()))
	}
	return nil
}

// Stop stops the started components in reverse order. Every component gets
// its chance to stop; failures are collected rather than short-circuiting.
func (r *Runner) Stop(ctx context.Context) error {
	var errs []error
	for i := len(r.started) - 1; i >= 0; i-- {
		c := r.started[i]
		if err := c.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
			r.logger.Error("component stop failed",
				slog.String("name", c.Name()),
				slog.Any("error", err))
			continue
		}
		r.logger.Info("component stopped", slog.String("name", c.Name()))
	}
	r.started = nil
	return errors.Join(errs...)
}

// funcComponent adapts plain functions into a Component
type funcComponent struct {
	name  string
	init  func(ctx context.Context) error
	start func(ctx context.Context) error
	stop  func(ctx context.Context) error
}

// NewComponent builds a Component from optional init, start, and stop
// functions; nil stages are no-ops
func NewComponent(name string, init, start, stop func(ctx context.Context) error) Component {
	return &funcComponent{name: name, init: init, start: start, stop: stop}
}

func (c *funcComponent) Name() string { return c.name }

func (c *funcComponent) Init(ctx context.Context) error {
	if c.init == nil {
		return nil
	}
	return c.init(ctx)
}

func (c *funcComponent) Start(ctx context.Context) error {
	if c.start == nil {
		return nil
	}
	return c.start(ctx)
}

func (c *funcComponent) Stop(ctx context.Context) error {
	if c.stop == nil {
		return nil
	}
	return c.stop(ctx)
}
