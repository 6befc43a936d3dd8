package storage

import (
	"context"

	"sunward.gg/internal/model"
)

// Storage is the persistence gateway. A player's structures are saved and
// loaded as one flat record set keyed by structure id; saving replaces the
// whole set, so a smaller map removes structures. Loading an unknown owner
// yields an empty map, not an error.
type Storage interface {
	// Structure operations
	SaveStructures(ctx context.Context, owner model.PlayerID, records map[model.StructureID]model.StructureRecord) error
	LoadStructures(ctx context.Context, owner model.PlayerID) (map[model.StructureID]model.StructureRecord, error)

	// Owners lists every owner with at least one persisted structure
	Owners(ctx context.Context) ([]model.PlayerID, error)

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error
}

// DumpAll collects every owner's persisted records, for snapshotting
func DumpAll(ctx context.Context, s Storage) (map[model.PlayerID]map[model.StructureID]model.StructureRecord, error) {
	owners, err := s.Owners(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[model.PlayerID]map[model.StructureID]model.StructureRecord, len(owners))
	for _, owner := range owners {
		records, err := s.LoadStructures(ctx, owner)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			out[owner] = records
		}
	}
	return out, nil
}
