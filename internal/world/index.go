package world

import "sunward.gg/internal/model"

// Occluder is a world box that can block an exposure ray
type Occluder struct {
	Box AABB
	ID  model.StructureID // empty for static world geometry
}

// Index holds the static world geometry (terrain features, rock overhangs)
// configured for the map. Structures are merged in per scan, so the index
// itself never changes after startup.
type Index struct {
	static []Occluder
}

// NewIndex creates an index over the configured static occluder boxes
func NewIndex(static []AABB) *Index {
	occluders := make([]Occluder, len(static))
	for i, box := range static {
		occluders[i] = Occluder{Box: box}
	}
	return &Index{static: occluders}
}

// StaticCount returns how many static occluders are configured
func (i *Index) StaticCount() int {
	return len(i.static)
}

// Batch assembles the occluder set for one scan pass: the static boxes plus
// every live structure's bounds. Built once per scan so each ray test walks
// a flat slice.
func (i *Index) Batch(structures []*model.Structure) []Occluder {
	batch := make([]Occluder, 0, len(i.static)+len(structures))
	batch = append(batch, i.static...)
	for _, s := range structures {
		batch = append(batch, Occluder{
			Box: BoundsFor(s.Type, s.Transform),
			ID:  s.ID,
		})
	}
	return batch
}

// HitsAny reports whether the ray from origin along dir intersects any
// occluder in the batch, skipping the excluded structure's own geometry
func HitsAny(batch []Occluder, origin, dir model.Vec3, exclude model.StructureID) bool {
	for _, occ := range batch {
		if occ.ID != "" && occ.ID == exclude {
			continue
		}
		if RayHitsAABB(origin, dir, occ.Box) {
			return true
		}
	}
	return false
}
