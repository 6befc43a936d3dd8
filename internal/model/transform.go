package model

import "math"

// Vec3 is a position or direction in world space
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Add returns the component-wise sum of v and o
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the component-wise difference of v and o
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v multiplied by f
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Length returns the euclidean magnitude of v
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns v scaled to unit length; the zero vector is returned unchanged
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Finite reports whether every component is a finite number (no NaN, no ±Inf)
func (v Vec3) Finite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Transform is a rigid placement: a world position plus a rotation about the
// vertical (Y) axis. Yaw is stored in degrees to match the client convention.
type Transform struct {
	Position   Vec3
	YawDegrees float64
}

// Finite reports whether the position and yaw are all finite numbers
func (t Transform) Finite() bool {
	return t.Position.Finite() && finite(t.YawDegrees)
}

// Apply maps a point from structure-local space into world space
func (t Transform) Apply(local Vec3) Vec3 {
	sin, cos := math.Sincos(t.YawDegrees * math.Pi / 180)
	rotated := Vec3{
		X: cos*local.X + sin*local.Z,
		Y: local.Y,
		Z: -sin*local.X + cos*local.Z,
	}
	return rotated.Add(t.Position)
}

// Array encodes the transform as a row-major 3x4 rigid matrix
// (rotation in columns 0-2, translation in column 3). This is the
// persisted wire form.
func (t Transform) Array() [12]float64 {
	sin, cos := math.Sincos(t.YawDegrees * math.Pi / 180)
	return [12]float64{
		cos, 0, sin, t.Position.X,
		0, 1, 0, t.Position.Y,
		-sin, 0, cos, t.Position.Z,
	}
}

// TransformFromArray decodes a row-major 3x4 rigid matrix produced by Array.
// Fails with ErrInvalidTransform if any entry is NaN or infinite.
func TransformFromArray(a [12]float64) (Transform, error) {
	for _, f := range a {
		if !finite(f) {
			return Transform{}, ErrInvalidTransform
		}
	}
	yaw := math.Atan2(a[2], a[0]) * 180 / math.Pi
	return Transform{
		Position:   Vec3{X: a[3], Y: a[7], Z: a[11]},
		YawDegrees: yaw,
	}, nil
}
