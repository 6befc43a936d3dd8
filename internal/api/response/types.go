package response

import (
	"time"

	"sunward.gg/internal/model"
	"sunward.gg/internal/services/session"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
	}
}

// ConnectResponse is the response for the session connect endpoint
type ConnectResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"sessionToken"`
	// Restored is the number of persisted structures re-registered for
	// this player on connect.
	Restored int `json:"restored"`
}

// ConnectResponseFromSession creates a ConnectResponse from a session
func ConnectResponseFromSession(s *session.Session, restored int) ConnectResponse {
	return ConnectResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		Restored:     restored,
	}
}

// Structure represents a placed structure in API responses
type Structure struct {
	ID            string      `json:"id"`
	Owner         string      `json:"owner"`
	StructureType string      `json:"structureType"`
	Material      string      `json:"material"`
	Health        float64     `json:"health"`
	MaxHealth     float64     `json:"maxHealth"`
	Exposed       bool        `json:"exposed"`
	Transform     [12]float64 `json:"transform"`
	LastDamageAt  *time.Time  `json:"lastDamageAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// StructureFromModel converts a model.Structure to a response Structure.
// MaxHealth is resolved from the material table; unknown materials report 0.
func StructureFromModel(s model.Structure, materials model.Materials) Structure {
	var maxHealth float64
	if profile, err := materials.Profile(s.Material); err == nil {
		maxHealth = profile.MaxHealth
	}

	var lastDamage *time.Time
	if !s.LastDamageTime.IsZero() {
		t := s.LastDamageTime
		lastDamage = &t
	}

	return Structure{
		ID:            string(s.ID),
		Owner:         string(s.Owner),
		StructureType: string(s.Type),
		Material:      string(s.Material),
		Health:        s.Health,
		MaxHealth:     maxHealth,
		Exposed:       s.Exposed,
		Transform:     s.Transform.Array(),
		LastDamageAt:  lastDamage,
		CreatedAt:     s.CreatedAt,
	}
}

// StructureList is the response for structure listing endpoints
type StructureList struct {
	Structures []Structure `json:"structures"`
	Count      int         `json:"count"`
}

// StructureListFromModel converts a slice of model structures
func StructureListFromModel(structures []model.Structure, materials model.Materials) StructureList {
	out := make([]Structure, len(structures))
	for i, s := range structures {
		out[i] = StructureFromModel(s, materials)
	}
	return StructureList{Structures: out, Count: len(out)}
}

// BuildResponse is the response after placing a structure
type BuildResponse struct {
	Structure Structure `json:"structure"`
}

// RepairResponse is the response after repairing a structure
type RepairResponse struct {
	Structure Structure `json:"structure"`
}

// DamageResponse is the response after applying admin damage
type DamageResponse struct {
	StructureID string  `json:"structureId"`
	Health      float64 `json:"health"`
	Destroyed   bool    `json:"destroyed"`
}

// DecayResponse reports the decay damage toggle state
type DecayResponse struct {
	Enabled bool `json:"enabled"`
}

// DisconnectResponse is the response after closing a session
type DisconnectResponse struct {
	PlayerID string `json:"playerId"`
	// Saved reports whether the player's structures were flushed to
	// storage as part of the disconnect.
	Saved bool `json:"saved"`
}
