// Package engine owns the authoritative simulation state and its tick loop.
// Every mutation of the world (placement, repair, decay, destruction) passes
// through the Engine's mutex, which is the serialization boundary between
// request handlers and the periodic passes.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"sunward.gg/internal/dependencies/clock"
	"sunward.gg/internal/interval"
	"sunward.gg/internal/model"
	"sunward.gg/internal/registry"
	"sunward.gg/internal/services/exposure"
	"sunward.gg/internal/services/health"
	"sunward.gg/internal/services/placement"
	"sunward.gg/internal/storage"
)

// Config holds the engine's cadences
type Config struct {
	TickRate              time.Duration
	ExposureCheckInterval time.Duration
	HealthCheckInterval   time.Duration
}

// DefaultConfig returns the default cadences
func DefaultConfig() Config {
	return Config{
		TickRate:              100 * time.Millisecond,
		ExposureCheckInterval: time.Second,
		HealthCheckInterval:   time.Second,
	}
}

// Deps are the collaborators the engine orchestrates
type Deps struct {
	Clock       clock.Clock
	Logger      *slog.Logger
	Registry    *registry.Registry
	Validator   *placement.Validator
	Scanner     *exposure.Scanner
	Ledger      *health.Ledger
	Store       storage.Storage
	Sink        health.RecordSink
	Materials   model.Materials
	MaterialFor func(model.StructureType) model.MaterialKey
}

// Engine serializes all simulation state mutations
type Engine struct {
	mu sync.Mutex

	clock       clock.Clock
	logger      *slog.Logger
	registry    *registry.Registry
	validator   *placement.Validator
	scanner     *exposure.Scanner
	ledger      *health.Ledger
	store       storage.Storage
	sink        health.RecordSink
	materials   model.Materials
	materialFor func(model.StructureType) model.MaterialKey

	exposureGate *interval.Gate
	healthGate   *interval.Gate
	cfg          Config

	ticks uint64
}

// New creates an engine from its collaborators
func New(deps Deps, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.TickRate == 0 {
		cfg.TickRate = def.TickRate
	}
	if cfg.ExposureCheckInterval == 0 {
		cfg.ExposureCheckInterval = def.ExposureCheckInterval
	}
	if cfg.HealthCheckInterval == 0 {
		cfg.HealthCheckInterval = def.HealthCheckInterval
	}
	return &Engine{
		clock:        deps.Clock,
		logger:       deps.Logger.With(slog.String("component", "engine")),
		registry:     deps.Registry,
		validator:    deps.Validator,
		scanner:      deps.Scanner,
		ledger:       deps.Ledger,
		store:        deps.Store,
		sink:         deps.Sink,
		materials:    deps.Materials,
		materialFor:  deps.MaterialFor,
		exposureGate: interval.NewGate(cfg.ExposureCheckInterval),
		healthGate:   interval.NewGate(cfg.HealthCheckInterval),
		cfg:          cfg,
	}
}

// Step advances the simulation one tick. The exposure scan and the health
// sweep each run behind their own interval gate, so most ticks cost a pair
// of time comparisons.
func (e *Engine) Step(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ticks++
	if e.exposureGate.Due(now) {
		e.scanner.Scan(now)
	}
	if e.healthGate.Due(now) {
		e.ledger.Sweep(now)
	}
}

// Build validates and performs a placement. On success the structure starts
// at its material's max health and the owner's rate window is charged; a
// failed request leaves no trace.
func (e *Engine) Build(owner model.PlayerID, structureType string, t model.Transform) (model.Structure, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	typ, err := e.validator.Validate(owner, structureType, t)
	if err != nil {
		return model.Structure{}, err
	}

	key := e.materialFor(typ)
	profile, err := e.materials.Profile(key)
	if err != nil {
		return model.Structure{}, err
	}

	s := e.registry.Create(owner, typ, t, key, profile.MaxHealth, e.clock.Now())
	e.validator.RecordPlacement(owner)
	e.sink.Enqueue(owner, e.registry.OwnerRecords(owner))

	e.logger.Info("structure placed",
		slog.String("structure_id", string(s.ID)),
		slog.String("owner", string(owner)),
		slog.String("type", string(typ)),
		slog.String("material", string(key)))
	return *s, nil
}

// Repair resets a structure to full health. Owner-only.
func (e *Engine) Repair(owner model.PlayerID, id model.StructureID) (model.Structure, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.ledger.Repair(id, owner, e.clock.Now())
	if err != nil {
		return model.Structure{}, err
	}
	return *s, nil
}

// Structure returns a copy of one structure
func (e *Engine) Structure(id model.StructureID) (model.Structure, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.registry.Get(id)
	if err != nil {
		return model.Structure{}, err
	}
	return *s, nil
}

// Structures returns copies of the owner's structures, ordered by id
func (e *Engine) Structures(owner model.PlayerID) []model.Structure {
	e.mu.Lock()
	defer e.mu.Unlock()

	owned := e.registry.Owned(owner)
	out := make([]model.Structure, 0, len(owned))
	for _, s := range owned {
		out = append(out, *s)
	}
	return out
}

// AllStructures returns copies of every structure, ordered by id
func (e *Engine) AllStructures() []model.Structure {
	e.mu.Lock()
	defer e.mu.Unlock()

	all := e.registry.All()
	out := make([]model.Structure, 0, len(all))
	for _, s := range all {
		out = append(out, *s)
	}
	return out
}

// RestoreOwner loads the owner's persisted structures into the registry.
// When the registry already holds structures for the owner, the in-memory
// state wins and nothing is loaded.
func (e *Engine) RestoreOwner(ctx context.Context, owner model.PlayerID) (int, error) {
	e.mu.Lock()
	present := e.registry.CountByOwner(owner)
	e.mu.Unlock()
	if present > 0 {
		return 0, nil
	}

	// Storage I/O happens outside the lock; the tick loop keeps running.
	records, err := e.store.LoadStructures(ctx, owner)
	if err != nil {
		e.logger.Error("structure load failed",
			slog.String("owner", string(owner)),
			slog.Any("error", err))
		return 0, fmt.Errorf("%w: loading structures", model.ErrPersistenceFailure)
	}
	if len(records) == 0 {
		return 0, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.registry.CountByOwner(owner) > 0 {
		// A concurrent session restored while we were loading.
		return 0, nil
	}

	restored := 0
	for id, rec := range records {
		s, err := model.StructureFromRecord(id, owner, rec, e.materials)
		if err != nil {
			e.logger.Warn("skipping unreadable structure record",
				slog.String("structure_id", string(id)),
				slog.Any("error", err))
			continue
		}
		if err := e.registry.Insert(s); err != nil {
			e.logger.Warn("skipping duplicate structure record",
				slog.String("structure_id", string(id)),
				slog.Any("error", err))
			continue
		}
		restored++
	}

	e.logger.Info("structures restored",
		slog.String("owner", string(owner)),
		slog.Int("count", restored))
	return restored, nil
}

// SaveOwner synchronously writes the owner's current structure set
func (e *Engine) SaveOwner(ctx context.Context, owner model.PlayerID) error {
	e.mu.Lock()
	records := e.registry.OwnerRecords(owner)
	e.mu.Unlock()

	if err := e.store.SaveStructures(ctx, owner, records); err != nil {
		e.logger.Error("structure save failed",
			slog.String("owner", string(owner)),
			slog.Any("error", err))
		return fmt.Errorf("%w: saving structures", model.ErrPersistenceFailure)
	}
	return nil
}

// ReleaseOwner clears transient per-owner state once their last session ends
func (e *Engine) ReleaseOwner(owner model.PlayerID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.validator.ReleaseOwner(owner)
}

// AdminDestroy removes a structure regardless of health
func (e *Engine) AdminDestroy(id model.StructureID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Destroy(id, e.clock.Now())
}

// AdminDamage subtracts health directly, destroying the structure if it hits
// zero. The destroyed flag reports which happened.
func (e *Engine) AdminDamage(id model.StructureID, amount float64) (model.Structure, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return model.Structure{}, false, fmt.Errorf("damage amount must be a positive finite number")
	}

	s, err := e.registry.Get(id)
	if err != nil {
		return model.Structure{}, false, err
	}

	s.Health = math.Max(0, s.Health-amount)
	s.LastDamageTime = e.clock.Now()
	if s.Health <= 0 {
		out := *s
		if err := e.ledger.Destroy(id, e.clock.Now()); err != nil {
			return model.Structure{}, false, err
		}
		return out, true, nil
	}

	e.sink.Enqueue(s.Owner, e.registry.OwnerRecords(s.Owner))
	return *s, false, nil
}

// SetDamageEnabled flips the environmental damage toggle
func (e *Engine) SetDamageEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ledger.SetDamageEnabled(enabled)
}

// DamageEnabled returns the toggle's current value
func (e *Engine) DamageEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.DamageEnabled()
}

// FlushAll enqueues every owner's record set, typically ahead of shutdown
func (e *Engine) FlushAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	owners := make(map[model.PlayerID]bool)
	for _, s := range e.registry.All() {
		owners[s.Owner] = true
	}
	for owner := range owners {
		e.sink.Enqueue(owner, e.registry.OwnerRecords(owner))
	}
}

// DumpRecords projects the whole registry into persistable records
func (e *Engine) DumpRecords() map[model.PlayerID]map[model.StructureID]model.StructureRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[model.PlayerID]map[model.StructureID]model.StructureRecord)
	for _, s := range e.registry.All() {
		m := out[s.Owner]
		if m == nil {
			m = make(map[model.StructureID]model.StructureRecord)
			out[s.Owner] = m
		}
		m[s.ID] = s.Record()
	}
	return out
}

// Ticks returns the number of ticks stepped so far
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}
