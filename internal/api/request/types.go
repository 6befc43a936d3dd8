package request

// ConnectRequest is the request body for opening a session
type ConnectRequest struct {
	DisplayName string `json:"displayName"`
}

// BuildRequest is the request body for placing a structure.
// Transform is a flattened 3x4 row-major matrix, rotation then position.
type BuildRequest struct {
	StructureType string    `json:"structureType"`
	Transform     []float64 `json:"transform"`
}

// RepairRequest is the request body for repairing a structure
type RepairRequest struct {
	StructureID string `json:"structureId"`
}

// AdminDamageRequest is the request body for applying admin damage
type AdminDamageRequest struct {
	StructureID string  `json:"structureId"`
	Amount      float64 `json:"amount"`
}

// AdminDecayRequest is the request body for toggling decay damage
type AdminDecayRequest struct {
	Enabled bool `json:"enabled"`
}
