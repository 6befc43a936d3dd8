package engine_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sunward.gg/internal/dependencies/mocks"
	"sunward.gg/internal/engine"
	"sunward.gg/internal/model"
	"sunward.gg/internal/registry"
	"sunward.gg/internal/services/exposure"
	"sunward.gg/internal/services/health"
	"sunward.gg/internal/services/placement"
	"sunward.gg/internal/storage/memory"
	"sunward.gg/internal/testutil"
	"sunward.gg/internal/world"
)

type recordingDispatcher struct {
	events []model.Event
}

func (r *recordingDispatcher) Dispatch(event model.Event) {
	r.events = append(r.events, event)
}

func (r *recordingDispatcher) ofType(t model.EventType) []model.Event {
	var out []model.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type recordingSink struct {
	saves map[model.PlayerID]map[model.StructureID]model.StructureRecord
}

func (r *recordingSink) Enqueue(owner model.PlayerID, records map[model.StructureID]model.StructureRecord) {
	if r.saves == nil {
		r.saves = make(map[model.PlayerID]map[model.StructureID]model.StructureRecord)
	}
	r.saves[owner] = records
}

type fixedPresence struct {
	connected bool
}

func (p *fixedPresence) AnyConnected() bool { return p.connected }

type EngineSuite struct {
	suite.Suite
	clock      *mocks.MockClock
	registry   *registry.Registry
	store      *memory.Storage
	sink       *recordingSink
	presence   *fixedPresence
	dispatcher *recordingDispatcher
	materials  model.Materials
	material   model.MaterialKey
	engine     *engine.Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.store = memory.New()
	s.sink = &recordingSink{}
	s.presence = &fixedPresence{connected: true}
	s.dispatcher = &recordingDispatcher{}
	s.material = "wood"
	s.materials = model.Materials{
		"wood":  {Name: "Wood", MaxHealth: 100, DecayRatePerSecond: 1, RepairCost: 10},
		"stone": {Name: "Stone", MaxHealth: 300, DecayRatePerSecond: 0.5, RepairCost: 25},
		"paper": {Name: "Paper", MaxHealth: 10, DecayRatePerSecond: 5, RepairCost: 1},
	}
	s.configure(placement.Config{
		MaxStructuresPerOwner: 20,
		MaxDistanceFromOrigin: 500,
		RateLimitWindow:       10 * time.Second,
		MaxActionsPerWindow:   5,
	})
}

// configure rebuilds the engine with fresh placement limits, keeping the
// remaining collaborators.
func (s *EngineSuite) configure(pcfg placement.Config) {
	s.registry = registry.New()
	logger := testutil.NopLogger()
	ledger := health.New(s.registry, s.materials, s.dispatcher, s.sink, s.presence, health.Config{
		WarningThreshold:      50,
		CriticalThreshold:     20,
		HealthCheckInterval:   time.Second,
		ExposureCheckInterval: time.Second,
		NotificationCooldown:  5 * time.Second,
		DamageEnabled:         true,
	}, logger)
	scanner := exposure.New(s.registry, world.NewIndex(nil), model.Vec3{Y: 1}, ledger, logger)
	validator := placement.New(s.registry, s.clock, pcfg)

	s.engine = engine.New(engine.Deps{
		Clock:     s.clock,
		Logger:    logger,
		Registry:  s.registry,
		Validator: validator,
		Scanner:   scanner,
		Ledger:    ledger,
		Store:     s.store,
		Sink:      s.sink,
		Materials: s.materials,
		MaterialFor: func(model.StructureType) model.MaterialKey {
			return s.material
		},
	}, engine.Config{
		TickRate:              100 * time.Millisecond,
		ExposureCheckInterval: time.Second,
		HealthCheckInterval:   time.Second,
	})
}

// stepFor drives the engine like the tick loop would: advance the clock by
// tick, step, repeat until d has passed.
func (s *EngineSuite) stepFor(d, tick time.Duration) {
	steps := int(d / tick)
	for i := 0; i < steps; i++ {
		s.clock.Advance(tick)
		s.engine.Step(s.clock.Now())
	}
}

func (s *EngineSuite) record(health float64) model.StructureRecord {
	t := model.Transform{Position: model.Vec3{X: 1, Z: 2}}
	return model.StructureRecord{
		Health:        health,
		Material:      "wood",
		StructureType: "wall",
		Transform:     t.Array(),
	}
}

func (s *EngineSuite) TestBuildCreatesStructureAtFullHealth() {
	transform := model.Transform{Position: model.Vec3{X: 5, Z: -3}, YawDegrees: 90}

	st, err := s.engine.Build("alice", "wall", transform)
	s.Require().NoError(err)

	s.Require().Equal(model.PlayerID("alice"), st.Owner)
	s.Require().Equal(model.StructureWall, st.Type)
	s.Require().Equal(transform, st.Transform)
	s.Require().Equal(100.0, st.Health)
	s.Require().Equal(model.MaterialKey("wood"), st.Material)

	// The owner's set was persisted with the new structure in it.
	s.Require().Contains(s.sink.saves["alice"], st.ID)
}

func (s *EngineSuite) TestBuildInvalidTypeLeavesNoTrace() {
	_, err := s.engine.Build("alice", "Tent", model.Transform{})
	s.Require().ErrorIs(err, model.ErrInvalidStructureType)
	s.Require().Zero(s.registry.Len())
	s.Require().Empty(s.sink.saves)
}

func (s *EngineSuite) TestBuildRejectsBadTransforms() {
	_, err := s.engine.Build("alice", "wall", model.Transform{Position: model.Vec3{X: math.NaN()}})
	s.Require().ErrorIs(err, model.ErrInvalidTransform)

	_, err = s.engine.Build("alice", "wall", model.Transform{Position: model.Vec3{X: 600}})
	s.Require().ErrorIs(err, model.ErrInvalidTransform)
	s.Require().Zero(s.registry.Len())
}

func (s *EngineSuite) TestBuildCapEnforced() {
	s.configure(placement.Config{
		MaxStructuresPerOwner: 2,
		MaxDistanceFromOrigin: 500,
		RateLimitWindow:       10 * time.Second,
		MaxActionsPerWindow:   5,
	})

	for i := 0; i < 2; i++ {
		_, err := s.engine.Build("alice", "wall", model.Transform{Position: model.Vec3{X: float64(i * 10)}})
		s.Require().NoError(err)
	}

	_, err := s.engine.Build("alice", "wall", model.Transform{Position: model.Vec3{X: 50}})
	s.Require().ErrorIs(err, model.ErrStructureLimitExceeded)
	s.Require().Equal(2, s.registry.CountByOwner("alice"))
}

func (s *EngineSuite) TestBuildRateLimited() {
	s.configure(placement.Config{
		MaxStructuresPerOwner: 20,
		MaxDistanceFromOrigin: 500,
		RateLimitWindow:       10 * time.Second,
		MaxActionsPerWindow:   2,
	})

	for i := 0; i < 2; i++ {
		_, err := s.engine.Build("alice", "wall", model.Transform{Position: model.Vec3{X: float64(i * 10)}})
		s.Require().NoError(err)
	}

	_, err := s.engine.Build("alice", "wall", model.Transform{Position: model.Vec3{X: 50}})
	s.Require().ErrorIs(err, model.ErrRateLimited)

	s.clock.Advance(11 * time.Second)
	_, err = s.engine.Build("alice", "wall", model.Transform{Position: model.Vec3{X: 50}})
	s.Require().NoError(err)
}

func (s *EngineSuite) TestDecayScenario() {
	st, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)

	// Ten seconds of 100ms ticks: the wall is exposed on the first scan and
	// then charged once per check interval.
	s.stepFor(10100*time.Millisecond, 100*time.Millisecond)

	got, err := s.engine.Structure(st.ID)
	s.Require().NoError(err)
	s.Require().Equal(90.0, got.Health)

	// Repair by a stranger fails and changes nothing.
	_, err = s.engine.Repair("bob", st.ID)
	s.Require().ErrorIs(err, model.ErrNotOwner)
	got, err = s.engine.Structure(st.ID)
	s.Require().NoError(err)
	s.Require().Equal(90.0, got.Health)

	// Repair by the owner resets to max.
	repaired, err := s.engine.Repair("alice", st.ID)
	s.Require().NoError(err)
	s.Require().Equal(100.0, repaired.Health)
}

func (s *EngineSuite) TestNeighborShadeStopsDecay() {
	wall, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)
	roof, err := s.engine.Build("bob", "roof", model.Transform{Position: model.Vec3{Y: 5}})
	s.Require().NoError(err)

	s.stepFor(5100*time.Millisecond, 100*time.Millisecond)

	// The wall sits in the roof's shadow; only the roof decays.
	gotWall, err := s.engine.Structure(wall.ID)
	s.Require().NoError(err)
	s.Require().Equal(100.0, gotWall.Health)

	gotRoof, err := s.engine.Structure(roof.ID)
	s.Require().NoError(err)
	s.Require().Equal(95.0, gotRoof.Health)
}

func (s *EngineSuite) TestDecayDestroysThroughTickLoop() {
	s.material = "paper"
	st, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)

	// Paper holds 10 health and loses 5 per interval: two charges.
	s.stepFor(3100*time.Millisecond, 100*time.Millisecond)

	_, err = s.engine.Structure(st.ID)
	s.Require().ErrorIs(err, model.ErrStructureNotFound)
	s.Require().Zero(s.registry.CountByOwner("alice"))

	destroyed := s.dispatcher.ofType(model.EventStructureDestroyed)
	s.Require().Len(destroyed, 1)
	s.Require().Equal(st.ID, destroyed[0].StructureID)
	s.Require().Empty(s.sink.saves["alice"])
}

func (s *EngineSuite) TestRestoreOwner() {
	ctx := context.Background()
	s.Require().NoError(s.store.SaveStructures(ctx, "alice", map[model.StructureID]model.StructureRecord{
		"alice-1": s.record(80),
		"alice-7": s.record(45),
	}))

	restored, err := s.engine.RestoreOwner(ctx, "alice")
	s.Require().NoError(err)
	s.Require().Equal(2, restored)
	s.Require().Equal(2, s.registry.CountByOwner("alice"))

	got, err := s.engine.Structure("alice-7")
	s.Require().NoError(err)
	s.Require().Equal(45.0, got.Health)

	// The id counter advanced past the restored suffixes.
	st, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)
	s.Require().Equal(model.StructureID("alice-8"), st.ID)
}

func (s *EngineSuite) TestRestorePrefersLiveState() {
	ctx := context.Background()
	live, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)

	s.Require().NoError(s.store.SaveStructures(ctx, "alice", map[model.StructureID]model.StructureRecord{
		"alice-90": s.record(10),
	}))

	restored, err := s.engine.RestoreOwner(ctx, "alice")
	s.Require().NoError(err)
	s.Require().Zero(restored)

	// Memory stays the truth: the stale persisted record was not loaded.
	_, err = s.engine.Structure("alice-90")
	s.Require().ErrorIs(err, model.ErrStructureNotFound)
	_, err = s.engine.Structure(live.ID)
	s.Require().NoError(err)
}

func (s *EngineSuite) TestRestoreSkipsCorruptRecords() {
	ctx := context.Background()
	bad := s.record(50)
	bad.StructureType = "tent"
	s.Require().NoError(s.store.SaveStructures(ctx, "alice", map[model.StructureID]model.StructureRecord{
		"alice-1": s.record(80),
		"alice-2": bad,
	}))

	restored, err := s.engine.RestoreOwner(ctx, "alice")
	s.Require().NoError(err)
	s.Require().Equal(1, restored)
	s.Require().Equal(1, s.registry.CountByOwner("alice"))
}

func (s *EngineSuite) TestRestoredDeadRecordSweptAway() {
	ctx := context.Background()
	s.Require().NoError(s.store.SaveStructures(ctx, "alice", map[model.StructureID]model.StructureRecord{
		"alice-1": s.record(0),
	}))

	restored, err := s.engine.RestoreOwner(ctx, "alice")
	s.Require().NoError(err)
	s.Require().Equal(1, restored)

	// The first sweep clears it out.
	s.stepFor(time.Second, 100*time.Millisecond)
	_, err = s.engine.Structure("alice-1")
	s.Require().ErrorIs(err, model.ErrStructureNotFound)
	s.Require().Len(s.dispatcher.ofType(model.EventStructureDestroyed), 1)
}

func (s *EngineSuite) TestSaveOwnerWritesThrough() {
	ctx := context.Background()
	st, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)

	s.Require().NoError(s.engine.SaveOwner(ctx, "alice"))

	records, err := s.store.LoadStructures(ctx, "alice")
	s.Require().NoError(err)
	s.Require().Contains(records, st.ID)
	s.Require().Equal(100.0, records[st.ID].Health)
}

func (s *EngineSuite) TestAdminDamage() {
	st, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)

	damaged, destroyed, err := s.engine.AdminDamage(st.ID, 40)
	s.Require().NoError(err)
	s.Require().False(destroyed)
	s.Require().Equal(60.0, damaged.Health)

	damaged, destroyed, err = s.engine.AdminDamage(st.ID, 70)
	s.Require().NoError(err)
	s.Require().True(destroyed)
	s.Require().Zero(damaged.Health)
	_, err = s.engine.Structure(st.ID)
	s.Require().ErrorIs(err, model.ErrStructureNotFound)
}

func (s *EngineSuite) TestAdminDamageRejectsBadAmounts() {
	st, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)

	for _, bad := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, _, err := s.engine.AdminDamage(st.ID, bad)
		s.Require().Error(err)
	}

	got, err := s.engine.Structure(st.ID)
	s.Require().NoError(err)
	s.Require().Equal(100.0, got.Health)
}

func (s *EngineSuite) TestAdminDestroy() {
	st, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)

	s.Require().NoError(s.engine.AdminDestroy(st.ID))
	_, err = s.engine.Structure(st.ID)
	s.Require().ErrorIs(err, model.ErrStructureNotFound)

	s.Require().ErrorIs(s.engine.AdminDestroy("alice-99"), model.ErrStructureNotFound)
}

func (s *EngineSuite) TestDamageToggle() {
	st, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)

	s.engine.SetDamageEnabled(false)
	s.Require().False(s.engine.DamageEnabled())
	s.stepFor(5100*time.Millisecond, 100*time.Millisecond)

	got, err := s.engine.Structure(st.ID)
	s.Require().NoError(err)
	s.Require().Equal(100.0, got.Health)

	s.engine.SetDamageEnabled(true)
	s.stepFor(2 * time.Second, time.Second)
	got, err = s.engine.Structure(st.ID)
	s.Require().NoError(err)
	s.Require().Less(got.Health, 100.0)
}

func (s *EngineSuite) TestReleaseOwnerResetsRateWindow() {
	s.configure(placement.Config{
		MaxStructuresPerOwner: 20,
		MaxDistanceFromOrigin: 500,
		RateLimitWindow:       10 * time.Second,
		MaxActionsPerWindow:   1,
	})

	_, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)
	_, err = s.engine.Build("alice", "wall", model.Transform{Position: model.Vec3{X: 10}})
	s.Require().ErrorIs(err, model.ErrRateLimited)

	s.engine.ReleaseOwner("alice")
	_, err = s.engine.Build("alice", "wall", model.Transform{Position: model.Vec3{X: 10}})
	s.Require().NoError(err)
}

func (s *EngineSuite) TestDumpRecords() {
	_, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)
	_, err = s.engine.Build("bob", "floor", model.Transform{Position: model.Vec3{X: 30}})
	s.Require().NoError(err)

	dump := s.engine.DumpRecords()
	s.Require().Len(dump, 2)
	s.Require().Len(dump["alice"], 1)
	s.Require().Len(dump["bob"], 1)
}

func (s *EngineSuite) TestStructuresListing() {
	first, err := s.engine.Build("alice", "wall", model.Transform{})
	s.Require().NoError(err)
	second, err := s.engine.Build("alice", "floor", model.Transform{Position: model.Vec3{X: 30}})
	s.Require().NoError(err)
	_, err = s.engine.Build("bob", "wall", model.Transform{Position: model.Vec3{X: 60}})
	s.Require().NoError(err)

	owned := s.engine.Structures("alice")
	s.Require().Len(owned, 2)
	s.Require().Equal(first.ID, owned[0].ID)
	s.Require().Equal(second.ID, owned[1].ID)

	s.Require().Len(s.engine.AllStructures(), 3)
}
