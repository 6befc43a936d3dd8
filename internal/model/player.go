package model

import (
	"strings"
	"time"
)

// PlayerID uniquely identifies a player across the system.
// It is the normalized form of the player's name.
type PlayerID string

// Player represents a connected or returning participant
type Player struct {
	ID          PlayerID  `json:"id"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

const (
	minPlayerNameLen = 3
	maxPlayerNameLen = 24
)

// NormalizePlayerName lowercases a display name into a PlayerID. Names must
// be 3 to 24 characters of letters, digits, underscore, or hyphen.
func NormalizePlayerName(name string) (PlayerID, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if len(normalized) < minPlayerNameLen || len(normalized) > maxPlayerNameLen {
		return "", ErrInvalidPlayerName
	}
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return "", ErrInvalidPlayerName
		}
	}
	return PlayerID(normalized), nil
}
