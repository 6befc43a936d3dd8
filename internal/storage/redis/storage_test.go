package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"sunward.gg/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func record(health float64) model.StructureRecord {
	return model.StructureRecord{
		Health:         health,
		Material:       "wood",
		StructureType:  "Wall",
		Transform:      model.Transform{Position: model.Vec3{X: 3, Z: -1}}.Array(),
		LastDamageTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
	}
}

// Structure tests

func (s *StorageSuite) TestSaveAndLoadStructures() {
	records := map[model.StructureID]model.StructureRecord{
		"alice-1": record(100),
		"alice-2": record(35.5),
	}

	err := s.storage.SaveStructures(s.ctx, "alice", records)
	s.Require().NoError(err)

	loaded, err := s.storage.LoadStructures(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(records, loaded)
}

func (s *StorageSuite) TestLoadUnknownOwnerIsEmpty() {
	loaded, err := s.storage.LoadStructures(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(loaded)
}

func (s *StorageSuite) TestSaveReplacesWholeSet() {
	_ = s.storage.SaveStructures(s.ctx, "alice", map[model.StructureID]model.StructureRecord{
		"alice-1": record(100),
		"alice-2": record(100),
	})

	err := s.storage.SaveStructures(s.ctx, "alice", map[model.StructureID]model.StructureRecord{
		"alice-1": record(20),
	})
	s.Require().NoError(err)

	loaded, err := s.storage.LoadStructures(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(loaded, 1)
	s.Equal(20.0, loaded["alice-1"].Health)
}

func (s *StorageSuite) TestSaveEmptySetRemovesOwnerFromIndex() {
	_ = s.storage.SaveStructures(s.ctx, "alice", map[model.StructureID]model.StructureRecord{
		"alice-1": record(100),
	})
	_ = s.storage.SaveStructures(s.ctx, "bob", map[model.StructureID]model.StructureRecord{
		"bob-2": record(100),
	})

	err := s.storage.SaveStructures(s.ctx, "alice", nil)
	s.Require().NoError(err)

	owners, err := s.storage.Owners(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"bob"}, owners)

	loaded, err := s.storage.LoadStructures(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(loaded)
}

func (s *StorageSuite) TestOwners() {
	_ = s.storage.SaveStructures(s.ctx, "alice", map[model.StructureID]model.StructureRecord{"alice-1": record(1)})
	_ = s.storage.SaveStructures(s.ctx, "bob", map[model.StructureID]model.StructureRecord{"bob-2": record(2)})

	owners, err := s.storage.Owners(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.PlayerID{"alice", "bob"}, owners)
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "alice",
		DisplayName: "Alice",
		CreatedAt:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	err := s.storage.SavePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal(player.DisplayName, retrieved.DisplayName)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestPing() {
	s.NoError(s.storage.Ping(s.ctx))
}
