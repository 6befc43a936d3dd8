package handler

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/gorilla/mux"

	"sunward.gg/internal/api/request"
	"sunward.gg/internal/api/response"
	"sunward.gg/internal/engine"
	"sunward.gg/internal/model"
)

// AdminHandler handles operator endpoints
type AdminHandler struct {
	engine    *engine.Engine
	materials model.Materials
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(eng *engine.Engine, materials model.Materials) *AdminHandler {
	return &AdminHandler{
		engine:    eng,
		materials: materials,
	}
}

// List handles GET /api/v1/admin/structures
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	structures := h.engine.AllStructures()
	response.JSON(w, http.StatusOK, response.StructureListFromModel(structures, h.materials))
}

// Destroy handles DELETE /api/v1/admin/structures/{id}
func (h *AdminHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id := model.StructureID(mux.Vars(r)["id"])

	if err := h.engine.AdminDestroy(id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Damage handles POST /api/v1/admin/damage
func (h *AdminHandler) Damage(w http.ResponseWriter, r *http.Request) {
	var req request.AdminDamageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.StructureID == "" {
		WriteError(w, NewInvalidRequestError("structureId is required"))
		return
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		WriteError(w, NewInvalidRequestError("amount must be a positive finite number"))
		return
	}

	s, destroyed, err := h.engine.AdminDamage(model.StructureID(req.StructureID), req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DamageResponse{
		StructureID: string(s.ID),
		Health:      s.Health,
		Destroyed:   destroyed,
	})
}

// SetDecay handles POST /api/v1/admin/decay
func (h *AdminHandler) SetDecay(w http.ResponseWriter, r *http.Request) {
	var req request.AdminDecayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	h.engine.SetDamageEnabled(req.Enabled)
	response.JSON(w, http.StatusOK, response.DecayResponse{Enabled: h.engine.DamageEnabled()})
}

// GetDecay handles GET /api/v1/admin/decay
func (h *AdminHandler) GetDecay(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.DecayResponse{Enabled: h.engine.DamageEnabled()})
}
