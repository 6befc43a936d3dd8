package memory

import (
	"context"
	"sync"

	"sunward.gg/internal/model"
	"sunward.gg/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Record maps are copied on the way in and out so callers never share state
// with the store.
type Storage struct {
	mu sync.RWMutex

	players    map[model.PlayerID]*model.Player
	structures map[model.PlayerID]map[model.StructureID]model.StructureRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:    make(map[model.PlayerID]*model.Player),
		structures: make(map[model.PlayerID]map[model.StructureID]model.StructureRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Structure operations

func (s *Storage) SaveStructures(ctx context.Context, owner model.PlayerID, records map[model.StructureID]model.StructureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(records) == 0 {
		delete(s.structures, owner)
		return nil
	}
	s.structures[owner] = copyRecords(records)
	return nil
}

func (s *Storage) LoadStructures(ctx context.Context, owner model.PlayerID) (map[model.StructureID]model.StructureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRecords(s.structures[owner]), nil
}

func (s *Storage) Owners(ctx context.Context) ([]model.PlayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owners := make([]model.PlayerID, 0, len(s.structures))
	for owner := range s.structures {
		owners = append(owners, owner)
	}
	return owners, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *player
	s.players[player.ID] = &copied
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

// Ping always succeeds for the in-memory store
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func copyRecords(records map[model.StructureID]model.StructureRecord) map[model.StructureID]model.StructureRecord {
	out := make(map[model.StructureID]model.StructureRecord, len(records))
	for id, rec := range records {
		out[id] = rec
	}
	return out
}
