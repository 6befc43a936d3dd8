// Package placement validates build requests before they touch the world.
// Checks run in a fixed order and the first failure wins; a failed request
// leaves no trace in any limiter or index.
package placement

import (
	"time"

	"sunward.gg/internal/dependencies/clock"
	"sunward.gg/internal/model"
	"sunward.gg/internal/registry"
)

// Config holds placement limits
type Config struct {
	MaxStructuresPerOwner int
	MaxDistanceFromOrigin float64
	RateLimitWindow       time.Duration
	MaxActionsPerWindow   int
}

// DefaultConfig returns default placement limits
func DefaultConfig() Config {
	return Config{
		MaxStructuresPerOwner: 20,
		MaxDistanceFromOrigin: 500,
		RateLimitWindow:       10 * time.Second,
		MaxActionsPerWindow:   5,
	}
}

// Validator runs the placement checks against the live registry
type Validator struct {
	registry *registry.Registry
	limiter  *RateLimiter
	cfg      Config
}

// New creates a validator over the given registry
func New(reg *registry.Registry, clk clock.Clock, cfg Config) *Validator {
	if cfg.MaxStructuresPerOwner == 0 {
		cfg.MaxStructuresPerOwner = DefaultConfig().MaxStructuresPerOwner
	}
	if cfg.MaxDistanceFromOrigin == 0 {
		cfg.MaxDistanceFromOrigin = DefaultConfig().MaxDistanceFromOrigin
	}
	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = DefaultConfig().RateLimitWindow
	}
	if cfg.MaxActionsPerWindow == 0 {
		cfg.MaxActionsPerWindow = DefaultConfig().MaxActionsPerWindow
	}
	return &Validator{
		registry: reg,
		limiter:  NewRateLimiter(clk, cfg.RateLimitWindow, cfg.MaxActionsPerWindow),
		cfg:      cfg,
	}
}

// Validate checks a build request. Checks run in order: rate limit, structure
// type, transform, per-owner cap. The returned type is only meaningful when
// err is nil.
func (v *Validator) Validate(owner model.PlayerID, structureType string, t model.Transform) (model.StructureType, error) {
	if !v.limiter.Allow(owner) {
		return "", model.ErrRateLimited
	}

	parsed, err := model.ParseStructureType(structureType)
	if err != nil {
		return "", err
	}

	if !t.Finite() {
		return "", model.ErrInvalidTransform
	}
	if t.Position.Length() > v.cfg.MaxDistanceFromOrigin {
		return "", model.ErrInvalidTransform
	}

	if v.registry.CountByOwner(owner) >= v.cfg.MaxStructuresPerOwner {
		return "", model.ErrStructureLimitExceeded
	}

	return parsed, nil
}

// RecordPlacement charges a successful placement against the owner's rate
// window. Call it only after the structure has actually been created.
func (v *Validator) RecordPlacement(owner model.PlayerID) {
	v.limiter.Record(owner)
}

// ReleaseOwner clears the owner's rate window
func (v *Validator) ReleaseOwner(owner model.PlayerID) {
	v.limiter.Release(owner)
}
