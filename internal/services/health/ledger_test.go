package health_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sunward.gg/internal/dependencies/mocks"
	"sunward.gg/internal/model"
	"sunward.gg/internal/registry"
	"sunward.gg/internal/services/health"
	"sunward.gg/internal/testutil"
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
	saves []map[model.StructureID]model.StructureRecord
	owner model.PlayerID
}

func (r *recordingSink) Enqueue(owner model.PlayerID, records map[model.StructureID]model.StructureRecord) {
	r.owner = owner
	r.saves = append(r.saves, records)
}

type fixedPresence struct {
	connected bool
}

func (p *fixedPresence) AnyConnected() bool { return p.connected }

type LedgerSuite struct {
	suite.Suite
	clock      *mocks.MockClock
	registry   *registry.Registry
	dispatcher *recordingDispatcher
	sink       *recordingSink
	presence   *fixedPresence
	ledger     *health.Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.registry = registry.New()
	s.dispatcher = &recordingDispatcher{}
	s.sink = &recordingSink{}
	s.presence = &fixedPresence{connected: true}
	materials := model.Materials{
		"wood":  {Name: "Wood", MaxHealth: 100, DecayRatePerSecond: 1, RepairCost: 10},
		"stone": {Name: "Stone", MaxHealth: 300, DecayRatePerSecond: 0.5, RepairCost: 25},
	}
	s.ledger = health.New(s.registry, materials, s.dispatcher, s.sink, s.presence, health.Config{
		WarningThreshold:      50,
		CriticalThreshold:     20,
		HealthCheckInterval:   time.Second,
		ExposureCheckInterval: time.Second,
		NotificationCooldown:  5 * time.Second,
		DamageEnabled:         true,
	}, testutil.NopLogger())
}

// exposedWall creates a wood wall already standing in sunlight.
func (s *LedgerSuite) exposedWall(owner model.PlayerID, healthValue float64) *model.Structure {
	st := s.registry.Create(owner, model.StructureWall, model.Transform{}, "wood", healthValue, s.clock.Now())
	st.Exposed = true
	return st
}

// sweepIntervals advances the clock one interval at a time, sweeping at each
// step.
func (s *LedgerSuite) sweepIntervals(n int) {
	for i := 0; i < n; i++ {
		s.clock.Advance(time.Second)
		s.ledger.Sweep(s.clock.Now())
	}
}

func (s *LedgerSuite) TestTenIntervalsCostTenHealth() {
	st := s.exposedWall("alice", 100)

	s.sweepIntervals(10)

	s.Require().Equal(90.0, st.Health)
}

func (s *LedgerSuite) TestDecayDeterministicUnderTickJitter() {
	st := s.exposedWall("alice", 100)

	// Sweeping four times per interval must not change the charge.
	for i := 0; i < 40; i++ {
		s.clock.Advance(250 * time.Millisecond)
		s.ledger.Sweep(s.clock.Now())
	}

	s.Require().Equal(90.0, st.Health)
}

func (s *LedgerSuite) TestFreshStructureNotChargedBeforeFirstInterval() {
	st := s.exposedWall("alice", 100)

	s.clock.Advance(500 * time.Millisecond)
	s.ledger.Sweep(s.clock.Now())

	s.Require().Equal(100.0, st.Health)
}

func (s *LedgerSuite) TestShadedStructureTakesNoDamage() {
	st := s.exposedWall("alice", 100)
	st.Exposed = false

	s.sweepIntervals(10)

	s.Require().Equal(100.0, st.Health)
}

func (s *LedgerSuite) TestNoRetroactiveChargeWhenSunReturns() {
	st := s.exposedWall("alice", 100)
	st.Exposed = false

	// Five shaded intervals, then the sun comes back.
	s.sweepIntervals(5)
	st.Exposed = true
	s.sweepIntervals(1)

	s.Require().Equal(99.0, st.Health)
}

func (s *LedgerSuite) TestDamageToggleOffPausesDecay() {
	st := s.exposedWall("alice", 100)
	s.ledger.SetDamageEnabled(false)

	s.sweepIntervals(5)
	s.Require().Equal(100.0, st.Health)

	s.ledger.SetDamageEnabled(true)
	s.sweepIntervals(5)
	s.Require().Equal(95.0, st.Health)
}

func (s *LedgerSuite) TestEmptyServerPausesDecay() {
	st := s.exposedWall("alice", 100)
	s.presence.connected = false

	s.sweepIntervals(5)
	s.Require().Equal(100.0, st.Health)

	s.presence.connected = true
	s.sweepIntervals(1)
	s.Require().Equal(99.0, st.Health)
}

func (s *LedgerSuite) TestDestructionAtZero() {
	st := s.exposedWall("alice", 2)
	id := st.ID

	s.sweepIntervals(2)

	_, err := s.registry.Get(id)
	s.Require().ErrorIs(err, model.ErrStructureNotFound)
	s.Require().Zero(s.registry.CountByOwner("alice"))
	s.Require().False(s.ledger.Cooldowns().Has(id))

	destroyed := s.dispatcher.ofType(model.EventStructureDestroyed)
	s.Require().Len(destroyed, 1)
	s.Require().Equal(id, destroyed[0].StructureID)
	s.Require().Zero(destroyed[0].Health)

	// The owner's persisted set no longer includes the structure.
	s.Require().NotEmpty(s.sink.saves)
	s.Require().NotContains(s.sink.saves[len(s.sink.saves)-1], id)
}

func (s *LedgerSuite) TestHealthClampsAtZero() {
	st := s.exposedWall("alice", 0.5)

	s.clock.Advance(time.Second)
	stats := s.ledger.Sweep(s.clock.Now())

	s.Require().Equal(1, stats.Destroyed)
	_, err := s.registry.Get(st.ID)
	s.Require().ErrorIs(err, model.ErrStructureNotFound)
}

func (s *LedgerSuite) TestWarningFiresOnEnteringBand() {
	s.exposedWall("alice", 51)

	s.sweepIntervals(1)

	warnings := s.dispatcher.ofType(model.EventStructureWarning)
	s.Require().Len(warnings, 1)
	s.Require().Equal(50.0, warnings[0].Health)
	s.Require().Equal(model.PlayerID("alice"), warnings[0].Owner)
}

func (s *LedgerSuite) TestCriticalTakesPriorityOverWarning() {
	s.exposedWall("alice", 21)

	s.sweepIntervals(1)

	s.Require().Empty(s.dispatcher.ofType(model.EventStructureWarning))
	critical := s.dispatcher.ofType(model.EventStructureCritical)
	s.Require().Len(critical, 1)
	s.Require().Equal(20.0, critical[0].Health)
}

func (s *LedgerSuite) TestCooldownSuppressesRepeatWarnings() {
	s.exposedWall("alice", 55)

	// Health walks 54..45 over ten intervals; the band is entered at 50
	// and re-alerted once the five second cooldown passes.
	s.sweepIntervals(10)

	warnings := s.dispatcher.ofType(model.EventStructureWarning)
	s.Require().Len(warnings, 2)
	s.Require().Equal(50.0, warnings[0].Health)
	s.Require().Equal(45.0, warnings[1].Health)
}

func (s *LedgerSuite) TestCooldownTracksLevelsIndependently() {
	s.exposedWall("alice", 23)

	// 22, 21 are warnings (only the first fires), 20 enters critical and
	// fires despite the warning cooldown still running.
	s.sweepIntervals(3)

	s.Require().Len(s.dispatcher.ofType(model.EventStructureWarning), 1)
	s.Require().Len(s.dispatcher.ofType(model.EventStructureCritical), 1)
}

func (s *LedgerSuite) TestRepairResetsToMaxHealth() {
	st := s.exposedWall("alice", 100)
	s.sweepIntervals(10)
	s.Require().Equal(90.0, st.Health)

	repaired, err := s.ledger.Repair(st.ID, "alice", s.clock.Now())
	s.Require().NoError(err)
	s.Require().Equal(100.0, repaired.Health)
	s.Require().NotEmpty(s.sink.saves)
	s.Require().Equal(model.PlayerID("alice"), s.sink.owner)
}

func (s *LedgerSuite) TestRepairByNonOwnerFails() {
	st := s.exposedWall("alice", 100)
	s.sweepIntervals(10)

	_, err := s.ledger.Repair(st.ID, "bob", s.clock.Now())
	s.Require().ErrorIs(err, model.ErrNotOwner)
	s.Require().Equal(90.0, st.Health)
}

func (s *LedgerSuite) TestRepairMissingStructure() {
	_, err := s.ledger.Repair("alice-99", "alice", s.clock.Now())
	s.Require().ErrorIs(err, model.ErrStructureNotFound)
}

func (s *LedgerSuite) TestRepairClearsNotificationCooldown() {
	st := s.exposedWall("alice", 51)
	s.sweepIntervals(1)
	s.Require().Len(s.dispatcher.ofType(model.EventStructureWarning), 1)

	_, err := s.ledger.Repair(st.ID, "alice", s.clock.Now())
	s.Require().NoError(err)

	// Decay back into the band alerts again without waiting out the old
	// cooldown.
	st.Health = 51
	s.sweepIntervals(1)
	s.Require().Len(s.dispatcher.ofType(model.EventStructureWarning), 2)
}

func (s *LedgerSuite) TestAdminDestroyIsUnconditional() {
	st := s.exposedWall("alice", 100)

	s.Require().NoError(s.ledger.Destroy(st.ID, s.clock.Now()))

	_, err := s.registry.Get(st.ID)
	s.Require().ErrorIs(err, model.ErrStructureNotFound)
	s.Require().Len(s.dispatcher.ofType(model.EventStructureDestroyed), 1)
}

func (s *LedgerSuite) TestDestroyMissingStructure() {
	err := s.ledger.Destroy("alice-99", s.clock.Now())
	s.Require().ErrorIs(err, model.ErrStructureNotFound)
}

func (s *LedgerSuite) TestExposureFlipReanchorsCheckTime() {
	st := s.exposedWall("alice", 100)
	st.Exposed = false

	// A long shaded stretch without sweeps leaves a stale check time.
	s.clock.Advance(30 * time.Second)
	st.Exposed = true
	s.ledger.OnExposureChanged(st, true, s.clock.Now())

	// Half an interval after the flip: no charge yet.
	s.clock.Advance(500 * time.Millisecond)
	s.ledger.Sweep(s.clock.Now())
	s.Require().Equal(100.0, st.Health)

	// A full interval after the flip: exactly one charge.
	s.clock.Advance(500 * time.Millisecond)
	s.ledger.Sweep(s.clock.Now())
	s.Require().Equal(99.0, st.Health)
}

func (s *LedgerSuite) TestSweepStatsCount() {
	s.exposedWall("alice", 100)
	shaded := s.exposedWall("alice", 100)
	shaded.Exposed = false
	s.exposedWall("bob", 1)

	s.clock.Advance(time.Second)
	stats := s.ledger.Sweep(s.clock.Now())

	s.Require().Equal(3, stats.Checked)
	s.Require().Equal(2, stats.Damaged)
	s.Require().Equal(1, stats.Destroyed)
}
