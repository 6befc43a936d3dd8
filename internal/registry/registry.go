// Package registry holds the authoritative in-memory set of live structures.
//
// The registry is not safe for concurrent use on its own: all access is
// serialized by the engine, which owns the simulation mutex.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"sunward.gg/internal/model"
)

// Registry indexes live structures by id and by owner. The two indexes move
// in lockstep: a structure present in one is always present in the other,
// and removal clears both before returning.
type Registry struct {
	byID    map[model.StructureID]*model.Structure
	byOwner map[model.PlayerID]map[model.StructureID]*model.Structure

	// counter feeds id generation; combined with the owner id it yields
	// unique ids without any coordination.
	counter uint64
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		byID:    make(map[model.StructureID]*model.Structure),
		byOwner: make(map[model.PlayerID]map[model.StructureID]*model.Structure),
	}
}

// Create builds a structure with a freshly allocated id and inserts it into
// both indexes. Health is set by the caller (material max for new placements).
func (r *Registry) Create(owner model.PlayerID, structureType model.StructureType, transform model.Transform, material model.MaterialKey, health float64, now time.Time) *model.Structure {
	r.counter++
	s := &model.Structure{
		ID:                  model.StructureID(fmt.Sprintf("%s-%d", owner, r.counter)),
		Owner:               owner,
		Type:                structureType,
		Transform:           transform,
		Material:            material,
		Health:              health,
		LastHealthCheckTime: now,
		CreatedAt:           now,
	}
	r.index(s)
	return s
}

// Insert registers a structure that already has an id (restored from
// persistence). The id counter advances past the structure's numeric suffix
// so later Create calls cannot collide with restored ids.
func (r *Registry) Insert(s *model.Structure) error {
	if _, exists := r.byID[s.ID]; exists {
		return fmt.Errorf("structure %s is already registered", s.ID)
	}
	if n, ok := idCounterSuffix(s.ID); ok && n > r.counter {
		r.counter = n
	}
	r.index(s)
	return nil
}

// Get returns the structure with the given id.
// Fails with ErrStructureNotFound if it does not exist.
func (r *Registry) Get(id model.StructureID) (*model.Structure, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, model.ErrStructureNotFound
	}
	return s, nil
}

// Remove deletes the structure from both indexes.
// Fails with ErrStructureNotFound if it does not exist.
func (r *Registry) Remove(id model.StructureID) error {
	s, ok := r.byID[id]
	if !ok {
		return model.ErrStructureNotFound
	}
	delete(r.byID, id)
	owned := r.byOwner[s.Owner]
	delete(owned, id)
	if len(owned) == 0 {
		delete(r.byOwner, s.Owner)
	}
	return nil
}

// CountByOwner returns how many structures the owner currently has
func (r *Registry) CountByOwner(owner model.PlayerID) int {
	return len(r.byOwner[owner])
}

// Len returns the total number of live structures
func (r *Registry) Len() int {
	return len(r.byID)
}

// All returns every live structure, ordered by id so periodic passes walk
// the world deterministically
func (r *Registry) All() []*model.Structure {
	out := make([]*model.Structure, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sortByID(out)
	return out
}

// Owned returns the owner's structures, ordered by id
func (r *Registry) Owned(owner model.PlayerID) []*model.Structure {
	owned := r.byOwner[owner]
	out := make([]*model.Structure, 0, len(owned))
	for _, s := range owned {
		out = append(out, s)
	}
	sortByID(out)
	return out
}

// OwnerRecords projects the owner's structures into their persisted form
func (r *Registry) OwnerRecords(owner model.PlayerID) map[model.StructureID]model.StructureRecord {
	owned := r.byOwner[owner]
	records := make(map[model.StructureID]model.StructureRecord, len(owned))
	for id, s := range owned {
		records[id] = s.Record()
	}
	return records
}

func (r *Registry) index(s *model.Structure) {
	r.byID[s.ID] = s
	owned, ok := r.byOwner[s.Owner]
	if !ok {
		owned = make(map[model.StructureID]*model.Structure)
		r.byOwner[s.Owner] = owned
	}
	owned[s.ID] = s
}

func sortByID(structures []*model.Structure) {
	sort.Slice(structures, func(i, j int) bool {
		return structures[i].ID < structures[j].ID
	})
}

// idCounterSuffix extracts the numeric counter from an "<owner>-<n>" id
func idCounterSuffix(id model.StructureID) (uint64, bool) {
	idx := strings.LastIndexByte(string(id), '-')
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(string(id)[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
