package geom

import (
	"math"
	"testing"
)

func TestVec3_Normalize(t *testing.T) {
	v := Vec3{3, 0, 4}.Normalize()
	if math.Abs(v.Length()-1) > 1e-12 {
		t.Errorf("expected unit length, got %f", v.Length())
	}

	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Errorf("expected zero vector for zero input, got %+v", zero)
	}
}

func TestAABB_Union(t *testing.T) {
	a := NewAABB(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	b := NewAABB(Vec3{2, -1, 0.5}, Vec3{3, 2, 4})

	u := a.Union(b)
	if u.Min != (Vec3{0, -1, 0}) {
		t.Errorf("union min wrong: %+v", u.Min)
	}
	if u.Max != (Vec3{3, 2, 4}) {
		t.Errorf("union max wrong: %+v", u.Max)
	}
}

func TestAABB_ExpandPoint(t *testing.T) {
	box := EmptyAABB()
	if !box.IsEmpty() {
		t.Fatal("EmptyAABB should be empty")
	}

	box = box.ExpandPoint(Vec3{1, 2, 3})
	box = box.ExpandPoint(Vec3{-1, 0, 5})

	if box.Min != (Vec3{-1, 0, 3}) || box.Max != (Vec3{1, 2, 5}) {
		t.Errorf("expanded box wrong: %+v", box)
	}
}

func TestNewAABB_SwapsInvertedAxes(t *testing.T) {
	box := NewAABB(Vec3{5, 0, 2}, Vec3{1, 3, -2})
	if box.Min.X != 1 || box.Max.X != 5 {
		t.Errorf("X axis not normalized: %+v", box)
	}
	if box.Min.Z != -2 || box.Max.Z != 2 {
		t.Errorf("Z axis not normalized: %+v", box)
	}
}

func TestRay_IntersectAABB(t *testing.T) {
	box := NewAABB(Vec3{-1, -1, -1}, Vec3{1, 1, 1})

	// Straight down onto the box
	down := Ray{Origin: Vec3{0, 5, 0}, Direction: Vec3{0, -1, 0}}
	tHit, hit := down.IntersectAABB(box)
	if !hit {
		t.Fatal("expected downward ray to hit box")
	}
	if math.Abs(tHit-4) > 1e-12 {
		t.Errorf("expected entry distance 4, got %f", tHit)
	}

	// Missing to the side
	miss := Ray{Origin: Vec3{5, 5, 0}, Direction: Vec3{0, -1, 0}}
	if _, hit := miss.IntersectAABB(box); hit {
		t.Error("expected offset ray to miss box")
	}

	// Starting inside returns exit distance
	inside := Ray{Origin: Vec3{0, 0, 0}, Direction: Vec3{0, -1, 0}}
	tHit, hit = inside.IntersectAABB(box)
	if !hit || math.Abs(tHit-1) > 1e-12 {
		t.Errorf("expected exit distance 1 from inside, got %f hit=%v", tHit, hit)
	}
}

func TestRay_IntersectTriangle(t *testing.T) {
	// Horizontal triangle at y=2 covering the origin column
	a := Vec3{-5, 2, -5}
	b := Vec3{5, 2, -5}
	c := Vec3{0, 2, 5}

	ray := Ray{Origin: Vec3{0, 10, 0}, Direction: Vec3{0, -1, 0}}
	tHit, hit := ray.IntersectTriangle(a, b, c)
	if !hit {
		t.Fatal("expected hit on horizontal triangle")
	}
	if math.Abs(tHit-8) > 1e-9 {
		t.Errorf("expected hit distance 8, got %f", tHit)
	}
	p := ray.At(tHit)
	if math.Abs(p.Y-2) > 1e-9 {
		t.Errorf("hit point should be at y=2, got %f", p.Y)
	}

	// Reverse winding still hits
	if _, hit := ray.IntersectTriangle(c, b, a); !hit {
		t.Error("expected hit regardless of winding")
	}

	// Ray outside the triangle misses
	missRay := Ray{Origin: Vec3{20, 10, 0}, Direction: Vec3{0, -1, 0}}
	if _, hit := missRay.IntersectTriangle(a, b, c); hit {
		t.Error("expected miss outside triangle")
	}

	// Upward ray never hits behind the origin
	up := Ray{Origin: Vec3{0, 10, 0}, Direction: Vec3{0, 1, 0}}
	if _, hit := up.IntersectTriangle(a, b, c); hit {
		t.Error("expected no hit behind ray origin")
	}
}

func TestTriangleNormal(t *testing.T) {
	n := TriangleNormal(Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 0, -1})
	if math.Abs(n.Y-1) > 1e-12 {
		t.Errorf("expected up-facing normal, got %+v", n)
	}

	// Vertical wall has no vertical component
	w := TriangleNormal(Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0})
	if math.Abs(w.Y) > 1e-12 {
		t.Errorf("wall normal should be horizontal, got %+v", w)
	}
}
