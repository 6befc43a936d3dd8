package model

// MaterialKey identifies a material profile in the configured materials table
type MaterialKey string

// MaterialProfile bundles the per-material tuning a structure is built with.
// Profiles come from configuration and are never mutated at runtime.
type MaterialProfile struct {
	Name               string
	MaxHealth          float64
	DecayRatePerSecond float64
	RepairCost         int // reserved for a future resource economy
}

// Materials is the configured material table, keyed by material key
type Materials map[MaterialKey]MaterialProfile

// Profile looks up a material profile.
// Fails with ErrInvalidMaterial for unknown keys.
func (m Materials) Profile(key MaterialKey) (MaterialProfile, error) {
	p, ok := m[key]
	if !ok {
		return MaterialProfile{}, ErrInvalidMaterial
	}
	return p, nil
}
