package model

import "errors"

// Common errors used across the application
var (
	// Placement errors
	ErrInvalidStructureType   = errors.New("invalid structure type")
	ErrInvalidTransform       = errors.New("invalid transform")
	ErrRateLimited            = errors.New("rate limited")
	ErrStructureLimitExceeded = errors.New("structure limit exceeded")

	// Structure errors
	ErrStructureNotFound = errors.New("structure not found")
	ErrNotOwner          = errors.New("player is not the structure owner")
	ErrInvalidMaterial   = errors.New("invalid material")

	// Persistence errors
	ErrPersistenceFailure = errors.New("persistence failure")

	// Player and session errors
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInvalidPlayerName = errors.New("invalid player name")
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnauthorized      = errors.New("unauthorized")
)
