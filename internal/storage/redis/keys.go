package redis

import (
	"fmt"

	"sunward.gg/internal/model"
)

// Key generation functions for each entity type

// structuresKey returns the Redis key for an owner's structure record set
func structuresKey(prefix string, owner model.PlayerID) string {
	return fmt.Sprintf("%s:structures:%s", prefix, owner)
}

// ownersIndexKey returns the Redis key for the SET of owners with structures
func ownersIndexKey(prefix string) string {
	return fmt.Sprintf("%s:idx:structure_owners", prefix)
}

// playerKey returns the Redis key for a Player
func playerKey(prefix string, id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", prefix, id)
}
