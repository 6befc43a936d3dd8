// Package world provides the geometry used by exposure scanning: axis-aligned
// bounding boxes, ray intersection, and per-type structure bounds.
package world

import (
	"math"

	"sunward.gg/internal/model"
)

// AABB is an axis-aligned box in world space
type AABB struct {
	Min model.Vec3
	Max model.Vec3
}

// Center returns the midpoint of the box
func (b AABB) Center() model.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// TopCenter returns the midpoint of the box's upper face, the reference
// point exposure rays are cast from
func (b AABB) TopCenter() model.Vec3 {
	c := b.Center()
	return model.Vec3{X: c.X, Y: b.Max.Y, Z: c.Z}
}

// rayEpsilon keeps intersections at the ray origin itself from counting as
// occlusion.
const rayEpsilon = 1e-6

// RayHitsAABB reports whether the ray from origin along dir intersects the
// box in front of the origin. Uses the slab method; dir need not be
// normalized, and a ray starting inside the box counts as a hit.
func RayHitsAABB(origin, dir model.Vec3, box AABB) bool {
	tmin := rayEpsilon
	tmax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		o, d := component(origin, axis), component(dir, axis)
		lo, hi := component(box.Min, axis), component(box.Max, axis)
		if d == 0 {
			if o < lo || o > hi {
				return false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}

func component(v model.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// halfExtents returns the local-space half sizes per structure type
func halfExtents(t model.StructureType) model.Vec3 {
	switch t {
	case model.StructureWall:
		return model.Vec3{X: 2, Y: 1.75, Z: 0.25}
	case model.StructureFloor, model.StructureRoof:
		return model.Vec3{X: 2, Y: 0.25, Z: 2}
	case model.StructureRamp:
		return model.Vec3{X: 2, Y: 1, Z: 2}
	default:
		return model.Vec3{X: 1, Y: 1, Z: 1}
	}
}

// BoundsFor returns the conservative world-space AABB of a structure's
// rotated box: the transform is applied to all eight local corners and the
// result enclosed.
func BoundsFor(structureType model.StructureType, transform model.Transform) AABB {
	h := halfExtents(structureType)
	min := model.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := model.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, sx := range []float64{-h.X, h.X} {
		for _, sy := range []float64{-h.Y, h.Y} {
			for _, sz := range []float64{-h.Z, h.Z} {
				p := transform.Apply(model.Vec3{X: sx, Y: sy, Z: sz})
				min.X = math.Min(min.X, p.X)
				min.Y = math.Min(min.Y, p.Y)
				min.Z = math.Min(min.Z, p.Z)
				max.X = math.Max(max.X, p.X)
				max.Y = math.Max(max.Y, p.Y)
				max.Z = math.Max(max.Z, p.Z)
			}
		}
	}
	return AABB{Min: min, Max: max}
}
