package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"sunward.gg/internal/model"
	"sunward.gg/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each owner's structure set is one JSON value; an owners index SET is kept
// in the same pipeline so saves stay atomic.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Structure operations

func (s *Storage) SaveStructures(ctx context.Context, owner model.PlayerID, records map[model.StructureID]model.StructureRecord) error {
	key := structuresKey(s.cfg.KeyPrefix, owner)
	index := ownersIndexKey(s.cfg.KeyPrefix)

	if len(records) == 0 {
		pipe := s.client.Pipeline()
		pipe.Del(ctx, key)
		pipe.SRem(ctx, index, string(owner))
		_, err := pipe.Exec(ctx)
		return err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	// Pipeline keeps the value and the owners index in step
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, index, string(owner))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) LoadStructures(ctx context.Context, owner model.PlayerID) (map[model.StructureID]model.StructureRecord, error) {
	data, err := s.client.Get(ctx, structuresKey(s.cfg.KeyPrefix, owner)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[model.StructureID]model.StructureRecord{}, nil
		}
		return nil, err
	}

	var records map[model.StructureID]model.StructureRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Storage) Owners(ctx context.Context) ([]model.PlayerID, error) {
	members, err := s.client.SMembers(ctx, ownersIndexKey(s.cfg.KeyPrefix)).Result()
	if err != nil {
		return nil, err
	}
	owners := make([]model.PlayerID, len(members))
	for i, m := range members {
		owners[i] = model.PlayerID(m)
	}
	return owners, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(s.cfg.KeyPrefix, player.ID), data, 0).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(s.cfg.KeyPrefix, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Ping verifies the Redis connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
