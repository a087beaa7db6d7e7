// Package scene holds the flattened triangle-mesh scene snapshot the
// generation pipeline runs over. A snapshot is pure data: a list of meshes
// with world-space vertices and precomputed bounds, decoupled from any
// renderer's scene graph.
package scene

import (
	"fmt"

	"github.com/citymesh/groundgen/pkg/geom"
)

// Mesh is a single triangle mesh in world space.
type Mesh struct {
	Name     string
	Vertices []geom.Vec3
	Indices  []uint32
	Bounds   geom.AABB
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the i-th triangle's vertices.
func (m *Mesh) Triangle(i int) (a, b, c geom.Vec3) {
	a = m.Vertices[m.Indices[i*3]]
	b = m.Vertices[m.Indices[i*3+1]]
	c = m.Vertices[m.Indices[i*3+2]]
	return a, b, c
}

// computeBounds accumulates the mesh's world-space AABB from its vertices.
func (m *Mesh) computeBounds() {
	box := geom.EmptyAABB()
	for _, v := range m.Vertices {
		box = box.ExpandPoint(v)
	}
	m.Bounds = box
}

// Scene is an immutable snapshot of the loaded city model.
type Scene struct {
	Meshes []Mesh
	Bounds geom.AABB
}

// New builds a scene from meshes, computing per-mesh and overall bounds.
// Meshes without triangles are rejected.
func New(meshes []Mesh) (*Scene, error) {
	if len(meshes) == 0 {
		return nil, fmt.Errorf("scene has no meshes")
	}

	s := &Scene{Meshes: meshes, Bounds: geom.EmptyAABB()}
	for i := range s.Meshes {
		m := &s.Meshes[i]
		if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
			return nil, fmt.Errorf("mesh %q: index count %d is not a multiple of 3", m.Name, len(m.Indices))
		}
		for _, idx := range m.Indices {
			if int(idx) >= len(m.Vertices) {
				return nil, fmt.Errorf("mesh %q: index %d out of range (%d vertices)", m.Name, idx, len(m.Vertices))
			}
		}
		for _, v := range m.Vertices {
			if !v.IsFinite() {
				return nil, fmt.Errorf("mesh %q: non-finite vertex", m.Name)
			}
		}
		m.computeBounds()
		s.Bounds = s.Bounds.Union(m.Bounds)
	}
	return s, nil
}

// TriangleCount returns the total triangle count across all meshes.
func (s *Scene) TriangleCount() int {
	total := 0
	for i := range s.Meshes {
		total += s.Meshes[i].TriangleCount()
	}
	return total
}
