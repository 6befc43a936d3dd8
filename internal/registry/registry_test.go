package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sunward.gg/internal/model"
	"sunward.gg/internal/registry"
)

type RegistrySuite struct {
	suite.Suite
	registry *registry.Registry
	now      time.Time
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.registry = registry.New()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *RegistrySuite) create(owner model.PlayerID) *model.Structure {
	return s.registry.Create(owner, model.StructureWall, model.Transform{}, "wood", 100, s.now)
}

func (s *RegistrySuite) TestCreateAssignsSequentialOwnerScopedIDs() {
	first := s.create("alice")
	second := s.create("alice")
	third := s.create("bob")

	s.Equal(model.StructureID("alice-1"), first.ID)
	s.Equal(model.StructureID("alice-2"), second.ID)
	s.Equal(model.StructureID("bob-3"), third.ID)
	s.Equal(model.PlayerID("alice"), first.Owner)
	s.Equal(100.0, first.Health)
	s.True(first.LastHealthCheckTime.Equal(s.now))
}

func (s *RegistrySuite) TestCreateIndexesBothWays() {
	created := s.create("alice")

	got, err := s.registry.Get(created.ID)
	s.Require().NoError(err)
	s.Same(created, got)

	s.Equal(1, s.registry.CountByOwner("alice"))
	s.Equal(0, s.registry.CountByOwner("bob"))

	owned := s.registry.Owned("alice")
	s.Require().Len(owned, 1)
	s.Same(created, owned[0])
}

func (s *RegistrySuite) TestGetMissing() {
	_, err := s.registry.Get("alice-99")
	s.ErrorIs(err, model.ErrStructureNotFound)
}

func (s *RegistrySuite) TestRemoveClearsBothIndexes() {
	created := s.create("alice")
	s.create("alice")

	s.Require().NoError(s.registry.Remove(created.ID))

	_, err := s.registry.Get(created.ID)
	s.ErrorIs(err, model.ErrStructureNotFound)
	s.Equal(1, s.registry.CountByOwner("alice"))
	s.Len(s.registry.Owned("alice"), 1)
	s.Equal(1, s.registry.Len())
}

func (s *RegistrySuite) TestRemoveMissing() {
	s.ErrorIs(s.registry.Remove("alice-7"), model.ErrStructureNotFound)
}

func (s *RegistrySuite) TestInsertAdvancesCounterPastRestoredIDs() {
	restored := &model.Structure{
		ID:       "alice-41",
		Owner:    "alice",
		Type:     model.StructureRoof,
		Material: "wood",
		Health:   60,
	}
	s.Require().NoError(s.registry.Insert(restored))

	got, err := s.registry.Get("alice-41")
	s.Require().NoError(err)
	s.Same(restored, got)

	// The next created id must not collide with anything restored.
	created := s.create("alice")
	s.Equal(model.StructureID("alice-42"), created.ID)
}

func (s *RegistrySuite) TestInsertDuplicateFails() {
	created := s.create("alice")
	err := s.registry.Insert(&model.Structure{ID: created.ID, Owner: "alice"})
	s.Error(err)
	s.Equal(1, s.registry.Len())
}

func (s *RegistrySuite) TestAllIsOrderedByID() {
	s.create("bob")
	s.create("alice")
	s.create("alice")

	all := s.registry.All()
	s.Require().Len(all, 3)
	s.Equal(model.StructureID("alice-2"), all[0].ID)
	s.Equal(model.StructureID("alice-3"), all[1].ID)
	s.Equal(model.StructureID("bob-1"), all[2].ID)
}

func (s *RegistrySuite) TestOwnerRecords() {
	created := s.create("alice")
	created.Health = 55
	s.create("bob")

	records := s.registry.OwnerRecords("alice")
	s.Require().Len(records, 1)
	rec, ok := records[created.ID]
	s.Require().True(ok)
	s.Equal(55.0, rec.Health)
	s.Equal("Wall", rec.StructureType)

	s.Empty(s.registry.OwnerRecords("carol"))
}
