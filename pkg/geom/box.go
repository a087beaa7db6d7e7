package geom

import "math"

// AABB is an axis-aligned bounding box in world coordinates.
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB creates an AABB from two corners, swapping axes so Min <= Max.
func NewAABB(min, max Vec3) AABB {
	box := AABB{Min: min, Max: max}
	if box.Min.X > box.Max.X {
		box.Min.X, box.Max.X = box.Max.X, box.Min.X
	}
	if box.Min.Y > box.Max.Y {
		box.Min.Y, box.Max.Y = box.Max.Y, box.Min.Y
	}
	if box.Min.Z > box.Max.Z {
		box.Min.Z, box.Max.Z = box.Max.Z, box.Min.Z
	}
	return box
}

// EmptyAABB returns an inverted box suitable as the identity for ExpandPoint
// and Union accumulation.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box encloses no volume on any axis.
func (b AABB) IsEmpty() bool {
	return b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y || b.Min.Z >= b.Max.Z
}

// Size returns the extents of the box per axis.
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Union returns the smallest box enclosing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: Vec3{
			math.Min(b.Min.X, other.Min.X),
			math.Min(b.Min.Y, other.Min.Y),
			math.Min(b.Min.Z, other.Min.Z),
		},
		Max: Vec3{
			math.Max(b.Max.X, other.Max.X),
			math.Max(b.Max.Y, other.Max.Y),
			math.Max(b.Max.Z, other.Max.Z),
		},
	}
}

// ExpandPoint grows the box to include p.
func (b AABB) ExpandPoint(p Vec3) AABB {
	return AABB{
		Min: Vec3{
			math.Min(b.Min.X, p.X),
			math.Min(b.Min.Y, p.Y),
			math.Min(b.Min.Z, p.Z),
		},
		Max: Vec3{
			math.Max(b.Max.X, p.X),
			math.Max(b.Max.Y, p.Y),
			math.Max(b.Max.Z, p.Z),
		},
	}
}

// ContainsXZ reports whether the horizontal point (x, z) lies inside the
// box's footprint.
func (b AABB) ContainsXZ(x, z float64) bool {
	return x >= b.Min.X && x <= b.Max.X && z >= b.Min.Z && z <= b.Max.Z
}
