package model

import "time"

// StructureID uniquely identifies a placed structure
type StructureID string

// StructureType is the closed set of buildable structure kinds
type StructureType string

const (
	StructureWall  StructureType = "Wall"
	StructureFloor StructureType = "Floor"
	StructureRoof  StructureType = "Roof"
	StructureRamp  StructureType = "Ramp"
)

// StructureTypes lists every valid structure type
func StructureTypes() []StructureType {
	return []StructureType{StructureWall, StructureFloor, StructureRoof, StructureRamp}
}

// ParseStructureType validates a client-supplied type name.
// Fails with ErrInvalidStructureType for anything outside the closed set.
func ParseStructureType(s string) (StructureType, error) {
	switch StructureType(s) {
	case StructureWall, StructureFloor, StructureRoof, StructureRamp:
		return StructureType(s), nil
	}
	return "", ErrInvalidStructureType
}

// Structure is a placed, owned, persistent building entity with health.
// ID, Owner, Type, Transform and Material are immutable after creation;
// the remaining fields are mutated only by the simulation engine.
type Structure struct {
	ID        StructureID
	Owner     PlayerID
	Type      StructureType
	Transform Transform
	Material  MaterialKey

	Health  float64
	Exposed bool // last-known exposure state, for flip detection

	LastDamageTime      time.Time
	LastHealthCheckTime time.Time
	CreatedAt           time.Time
}
