package notify

import (
	"encoding/json"
	"log/slog"

	"sunward.gg/internal/model"
)

// Dispatcher receives owner-facing events from the simulation. Implementations
// must not block: the caller is the tick loop.
type Dispatcher interface {
	Dispatch(event model.Event)
}

// LogDispatcher writes events to the server log
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a dispatcher that logs every event
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.With(slog.String("component", "notify"))}
}

func (d *LogDispatcher) Dispatch(event model.Event) {
	attrs := []any{
		slog.String("owner", string(event.Owner)),
		slog.String("structure_id", string(event.StructureID)),
		slog.String("structure_type", string(event.StructureType)),
		slog.Float64("health", event.Health),
	}
	switch event.Type {
	case model.EventStructureCritical:
		d.logger.Warn("structure critical", attrs...)
	case model.EventStructureDestroyed:
		d.logger.Info("structure destroyed", attrs...)
	default:
		d.logger.Info("structure warning", attrs...)
	}
}

// HubDispatcher pushes events to the owner's SSE clients
type HubDispatcher struct {
	hub *Hub
}

// NewHubDispatcher creates a dispatcher backed by the given hub
func NewHubDispatcher(hub *Hub) *HubDispatcher {
	return &HubDispatcher{hub: hub}
}

func (d *HubDispatcher) Dispatch(event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	d.hub.SendEvent(event.Owner, string(event.Type), string(data))
}

// Multi fans an event out to several dispatchers in order
type Multi []Dispatcher

func (m Multi) Dispatch(event model.Event) {
	for _, d := range m {
		d.Dispatch(event)
	}
}
