package handler

import (
	"net/http"

	"sunward.gg/internal/api/middleware"
	"sunward.gg/internal/notify"
)

// EventsHandler streams owner-facing structure events over SSE
type EventsHandler struct {
	hub *notify.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *notify.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /api/v1/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	notify.ServeSSE(w, r, h.hub, player.ID)
}
