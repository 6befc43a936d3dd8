package model

import "time"

// EventType identifies the type of an owner-facing event
type EventType string

const (
	EventStructureWarning   EventType = "structure_warning"
	EventStructureCritical  EventType = "structure_critical"
	EventStructureDestroyed EventType = "structure_destroyed"
)

// EventTypeForLevel maps a notification level onto its event type
func EventTypeForLevel(level NotificationLevel) EventType {
	if level == NotificationCritical {
		return EventStructureCritical
	}
	return EventStructureWarning
}

// Event is a single owner-facing notification delivered over the event stream
type Event struct {
	Type          EventType     `json:"type"`
	Timestamp     time.Time     `json:"timestamp"`
	Owner         PlayerID      `json:"owner"`
	StructureID   StructureID   `json:"structureId"`
	StructureType StructureType `json:"structureType"`
	Health        float64       `json:"health"` // 0 for destroyed
}
