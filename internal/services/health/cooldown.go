package health

import (
	"time"

	"sunward.gg/internal/interval"
	"sunward.gg/internal/model"
)

// cooldownEntry tracks when each alert level last fired for one structure
type cooldownEntry struct {
	lastWarning  time.Time
	lastCritical time.Time
}

// CooldownTable suppresses repeat alerts for a structure within the cooldown
// window, independently per level. Entries must be cleared when the
// structure goes away.
type CooldownTable struct {
	cooldown time.Duration
	entries  map[model.StructureID]*cooldownEntry
}

// NewCooldownTable creates a table with the given per-level cooldown
func NewCooldownTable(cooldown time.Duration) *CooldownTable {
	return &CooldownTable{
		cooldown: cooldown,
		entries:  make(map[model.StructureID]*cooldownEntry),
	}
}

// Allow reports whether an alert at level may fire for the structure at now,
// and records the alert when it may
func (t *CooldownTable) Allow(id model.StructureID, level model.NotificationLevel, now time.Time) bool {
	entry := t.entries[id]
	if entry == nil {
		entry = &cooldownEntry{}
		t.entries[id] = entry
	}

	last := &entry.lastWarning
	if level == model.NotificationCritical {
		last = &entry.lastCritical
	}
	if !interval.Elapsed(now, *last, t.cooldown) {
		return false
	}
	*last = now
	return true
}

// Clear drops the structure's entry
func (t *CooldownTable) Clear(id model.StructureID) {
	delete(t.entries, id)
}

// Has reports whether the structure currently has an entry
func (t *CooldownTable) Has(id model.StructureID) bool {
	_, ok := t.entries[id]
	return ok
}

// Len returns the number of tracked structures
func (t *CooldownTable) Len() int {
	return len(t.entries)
}
