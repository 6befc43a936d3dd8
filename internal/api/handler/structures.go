package handler

import (
	"encoding/json"
	"net/http"

	"sunward.gg/internal/api/middleware"
	"sunward.gg/internal/api/request"
	"sunward.gg/internal/api/response"
	"sunward.gg/internal/engine"
	"sunward.gg/internal/model"
)

// StructuresHandler handles structure placement and maintenance endpoints
type StructuresHandler struct {
	engine    *engine.Engine
	materials model.Materials
}

// NewStructuresHandler creates a new structures handler
func NewStructuresHandler(eng *engine.Engine, materials model.Materials) *StructuresHandler {
	return &StructuresHandler{
		engine:    eng,
		materials: materials,
	}
}

// Build handles POST /api/v1/structures/build
func (h *StructuresHandler) Build(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.StructureType == "" {
		WriteError(w, NewInvalidRequestError("structureType is required"))
		return
	}
	if len(req.Transform) != 12 {
		WriteError(w, model.ErrInvalidTransform)
		return
	}

	var arr [12]float64
	copy(arr[:], req.Transform)
	transform, err := model.TransformFromArray(arr)
	if err != nil {
		WriteError(w, err)
		return
	}

	s, err := h.engine.Build(player.ID, req.StructureType, transform)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.BuildResponse{
		Structure: response.StructureFromModel(s, h.materials),
	})
}

// Repair handles POST /api/v1/structures/repair
func (h *StructuresHandler) Repair(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.RepairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.StructureID == "" {
		WriteError(w, NewInvalidRequestError("structureId is required"))
		return
	}

	s, err := h.engine.Repair(player.ID, model.StructureID(req.StructureID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RepairResponse{
		Structure: response.StructureFromModel(s, h.materials),
	})
}

// List handles GET /api/v1/structures
func (h *StructuresHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	structures := h.engine.Structures(player.ID)
	response.JSON(w, http.StatusOK, response.StructureListFromModel(structures, h.materials))
}
