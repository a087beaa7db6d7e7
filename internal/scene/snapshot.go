package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/citymesh/groundgen/pkg/geom"
)

// snapshotMesh is the on-disk form of a mesh: vertices as a flat
// [x0,y0,z0, x1,y1,z1, ...] array.
type snapshotMesh struct {
	Name     string    `json:"name"`
	Vertices []float64 `json:"vertices"`
	Indices  []uint32  `json:"indices"`
}

type snapshot struct {
	Meshes []snapshotMesh `json:"meshes"`
}

// Parse decodes a scene snapshot from JSON and validates it.
func Parse(data []byte) (*Scene, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding scene snapshot: %w", err)
	}

	meshes := make([]Mesh, 0, len(snap.Meshes))
	for _, sm := range snap.Meshes {
		if len(sm.Vertices)%3 != 0 {
			return nil, fmt.Errorf("mesh %q: vertex array length %d is not a multiple of 3", sm.Name, len(sm.Vertices))
		}
		m := Mesh{
			Name:     sm.Name,
			Vertices: unflatten(sm.Vertices),
			Indices:  sm.Indices,
		}
		meshes = append(meshes, m)
	}
	return New(meshes)
}

func unflatten(flat []float64) []geom.Vec3 {
	verts := make([]geom.Vec3, len(flat)/3)
	for i := range verts {
		verts[i] = geom.Vec3{X: flat[i*3], Y: flat[i*3+1], Z: flat[i*3+2]}
	}
	return verts
}

// Load reads and parses a scene snapshot file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene snapshot %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scene snapshot %s: %w", path, err)
	}
	return s, nil
}
