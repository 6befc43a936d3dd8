// Package health runs the structure health state machine: exposure decay,
// owner repair, and the destruction sweep. A structure moves healthy ->
// warning -> critical as damage accumulates and is destroyed the moment its
// health reaches zero.
package health

import (
	"log/slog"
	"math"
	"time"

	"sunward.gg/internal/interval"
	"sunward.gg/internal/model"
	"sunward.gg/internal/notify"
	"sunward.gg/internal/registry"
)

// Presence reports whether anyone is connected. Decay pauses on an empty
// server so unattended structures survive the night.
type Presence interface {
	AnyConnected() bool
}

// RecordSink receives an owner's full record set after a mutation worth
// persisting
type RecordSink interface {
	Enqueue(owner model.PlayerID, records map[model.StructureID]model.StructureRecord)
}

// Config holds the ledger's thresholds and intervals
type Config struct {
	WarningThreshold      float64
	CriticalThreshold     float64
	HealthCheckInterval   time.Duration
	ExposureCheckInterval time.Duration
	NotificationCooldown  time.Duration
	DamageEnabled         bool
}

// DefaultConfig returns the default ledger configuration
func DefaultConfig() Config {
	return Config{
		WarningThreshold:      50,
		CriticalThreshold:     20,
		HealthCheckInterval:   time.Second,
		ExposureCheckInterval: time.Second,
		NotificationCooldown:  5 * time.Second,
		DamageEnabled:         true,
	}
}

// SweepStats summarizes one destruction sweep
type SweepStats struct {
	Checked   int
	Damaged   int
	Destroyed int
}

// Ledger owns per-structure health. Like the registry it is confined to the
// engine goroutine and carries no lock.
type Ledger struct {
	registry   *registry.Registry
	materials  model.Materials
	dispatcher notify.Dispatcher
	sink       RecordSink
	presence   Presence
	cooldowns  *CooldownTable
	logger     *slog.Logger

	cfg           Config
	damageEnabled bool
}

// New creates a ledger over the given registry
func New(reg *registry.Registry, materials model.Materials, dispatcher notify.Dispatcher, sink RecordSink, presence Presence, cfg Config, logger *slog.Logger) *Ledger {
	def := DefaultConfig()
	if cfg.WarningThreshold == 0 {
		cfg.WarningThreshold = def.WarningThreshold
	}
	if cfg.CriticalThreshold == 0 {
		cfg.CriticalThreshold = def.CriticalThreshold
	}
	if cfg.HealthCheckInterval == 0 {
		cfg.HealthCheckInterval = def.HealthCheckInterval
	}
	if cfg.ExposureCheckInterval == 0 {
		cfg.ExposureCheckInterval = def.ExposureCheckInterval
	}
	if cfg.NotificationCooldown == 0 {
		cfg.NotificationCooldown = def.NotificationCooldown
	}
	return &Ledger{
		registry:      reg,
		materials:     materials,
		dispatcher:    dispatcher,
		sink:          sink,
		presence:      presence,
		cooldowns:     NewCooldownTable(cfg.NotificationCooldown),
		logger:        logger.With(slog.String("component", "health")),
		cfg:           cfg,
		damageEnabled: cfg.DamageEnabled,
	}
}

// DamageActive reports whether decay currently applies: the global toggle is
// on and at least one player is connected
func (l *Ledger) DamageActive() bool {
	if !l.damageEnabled {
		return false
	}
	if l.presence == nil {
		return true
	}
	return l.presence.AnyConnected()
}

// SetDamageEnabled flips the global damage toggle
func (l *Ledger) SetDamageEnabled(enabled bool) {
	if l.damageEnabled != enabled {
		l.logger.Info("environmental damage toggled", slog.Bool("enabled", enabled))
	}
	l.damageEnabled = enabled
}

// DamageEnabled returns the current toggle value
func (l *Ledger) DamageEnabled() bool {
	return l.damageEnabled
}

// OnExposureChanged is called by the exposure scanner on a flip. Becoming
// exposed re-anchors the structure's check time so the first charge lands a
// full interval after the sun reached it.
func (l *Ledger) OnExposureChanged(s *model.Structure, exposed bool, now time.Time) {
	if exposed {
		s.LastHealthCheckTime = now
	}
	l.logger.Debug("exposure changed",
		slog.String("structure_id", string(s.ID)),
		slog.Bool("exposed", exposed))
}

// Sweep runs one decay and destruction pass over every structure. Anything
// at zero health is destroyed, even if it arrived at zero outside the decay
// path (a restored dead record, admin damage).
func (l *Ledger) Sweep(now time.Time) SweepStats {
	var stats SweepStats
	var doomed []model.StructureID

	for _, s := range l.registry.All() {
		stats.Checked++
		if l.applyDecay(s, now) {
			stats.Damaged++
		}
		if s.Health <= 0 {
			doomed = append(doomed, s.ID)
		}
	}

	for _, id := range doomed {
		if err := l.Destroy(id, now); err != nil {
			l.logger.Error("destruction failed", slog.String("structure_id", string(id)), slog.Any("error", err))
			continue
		}
		stats.Destroyed++
	}
	return stats
}

// applyDecay charges one interval's damage if the structure is due, exposed,
// and damage is active. The check time always advances when the structure is
// due, so shaded intervals are never charged retroactively.
func (l *Ledger) applyDecay(s *model.Structure, now time.Time) (charged bool) {
	if s.Health <= 0 {
		return false
	}
	if !interval.Elapsed(now, s.LastHealthCheckTime, l.cfg.HealthCheckInterval) {
		return false
	}
	s.LastHealthCheckTime = now

	if !s.Exposed || !l.DamageActive() {
		return false
	}

	profile, ok := l.materials[s.Material]
	if !ok {
		l.logger.Warn("unknown material, skipping decay",
			slog.String("structure_id", string(s.ID)),
			slog.String("material", string(s.Material)))
		return false
	}

	// Damage is charged per fixed interval, not per elapsed wall time.
	damage := profile.DecayRatePerSecond * l.cfg.ExposureCheckInterval.Seconds()
	if damage <= 0 {
		return false
	}

	s.Health = math.Max(0, s.Health-damage)
	s.LastDamageTime = now
	if s.Health > 0 {
		l.notifyBand(s, now)
	}
	return true
}

// notifyBand alerts the owner when a damaged structure sits in the warning
// or critical band. In the critical band only the critical alert fires.
func (l *Ledger) notifyBand(s *model.Structure, now time.Time) {
	var level model.NotificationLevel
	switch model.HealthStateOf(s.Health, l.cfg.WarningThreshold, l.cfg.CriticalThreshold) {
	case model.HealthStateCritical:
		level = model.NotificationCritical
	case model.HealthStateWarning:
		level = model.NotificationWarning
	default:
		return
	}

	if !l.cooldowns.Allow(s.ID, level, now) {
		return
	}
	l.dispatcher.Dispatch(model.Event{
		Type:          model.EventTypeForLevel(level),
		Timestamp:     now,
		Owner:         s.Owner,
		StructureID:   s.ID,
		StructureType: s.Type,
		Health:        s.Health,
	})
}

// Repair resets the structure to full health. Only the owner may repair.
func (l *Ledger) Repair(id model.StructureID, requester model.PlayerID, now time.Time) (*model.Structure, error) {
	s, err := l.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if s.Owner != requester {
		return nil, model.ErrNotOwner
	}

	profile, ok := l.materials[s.Material]
	if !ok {
		return nil, model.ErrInvalidMaterial
	}

	s.Health = profile.MaxHealth
	s.LastHealthCheckTime = now
	// Stale suppression must not swallow alerts from a fresh decay cycle.
	l.cooldowns.Clear(id)
	l.sink.Enqueue(s.Owner, l.registry.OwnerRecords(s.Owner))

	l.logger.Info("structure repaired",
		slog.String("structure_id", string(id)),
		slog.String("owner", string(s.Owner)),
		slog.Float64("health", s.Health))
	return s, nil
}

// Destroy removes the structure from the registry, clears its cooldown
// entry, updates the owner's persisted set, and tells the owner. Terminal
// and unconditional.
func (l *Ledger) Destroy(id model.StructureID, now time.Time) error {
	s, err := l.registry.Get(id)
	if err != nil {
		return err
	}
	if err := l.registry.Remove(id); err != nil {
		return err
	}
	l.cooldowns.Clear(id)
	l.sink.Enqueue(s.Owner, l.registry.OwnerRecords(s.Owner))

	l.dispatcher.Dispatch(model.Event{
		Type:          model.EventStructureDestroyed,
		Timestamp:     now,
		Owner:         s.Owner,
		StructureID:   s.ID,
		StructureType: s.Type,
		Health:        0,
	})
	l.logger.Info("structure destroyed",
		slog.String("structure_id", string(id)),
		slog.String("owner", string(s.Owner)),
		slog.String("type", string(s.Type)))
	return nil
}

// Cooldowns exposes the notification cooldown table
func (l *Ledger) Cooldowns() *CooldownTable {
	return l.cooldowns
}
