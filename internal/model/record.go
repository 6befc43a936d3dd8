package model

import (
	"math"
	"time"
)

// StructureRecord is the flat persisted projection of a Structure, keyed by
// structure id within an owner's record map. The transform is a row-major
// 3x4 rigid matrix; timestamps are unix milliseconds (0 = never).
type StructureRecord struct {
	Health              float64     `json:"health"`
	Material            string      `json:"material"`
	StructureType       string      `json:"structureType"`
	Transform           [12]float64 `json:"transform"`
	LastDamageTime      int64       `json:"lastDamageTime"`
	LastHealthCheckTime int64       `json:"lastHealthCheckTime"`
}

// Record projects the structure into its persisted form
func (s *Structure) Record() StructureRecord {
	return StructureRecord{
		Health:              s.Health,
		Material:            string(s.Material),
		StructureType:       string(s.Type),
		Transform:           s.Transform.Array(),
		LastDamageTime:      timeToMillis(s.LastDamageTime),
		LastHealthCheckTime: timeToMillis(s.LastHealthCheckTime),
	}
}

// StructureFromRecord reconstructs a live Structure from its persisted form.
// The structure type and transform are re-validated (persisted data is not
// trusted any more than client input), the material key must exist in the
// table, and health is clamped into [0, MaxHealth]. Exposure starts unknown
// (false) and is recomputed by the next scan.
func StructureFromRecord(id StructureID, owner PlayerID, rec StructureRecord, materials Materials) (*Structure, error) {
	structureType, err := ParseStructureType(rec.StructureType)
	if err != nil {
		return nil, err
	}
	transform, err := TransformFromArray(rec.Transform)
	if err != nil {
		return nil, err
	}
	profile, err := materials.Profile(MaterialKey(rec.Material))
	if err != nil {
		return nil, err
	}
	health := math.Min(math.Max(rec.Health, 0), profile.MaxHealth)
	return &Structure{
		ID:                  id,
		Owner:               owner,
		Type:                structureType,
		Transform:           transform,
		Material:            MaterialKey(rec.Material),
		Health:              health,
		LastDamageTime:      timeFromMillis(rec.LastDamageTime),
		LastHealthCheckTime: timeFromMillis(rec.LastHealthCheckTime),
	}, nil
}

func timeToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timeFromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
