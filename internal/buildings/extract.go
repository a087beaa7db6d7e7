// Package buildings extracts axis-aligned building colliders from a city
// scene by clustering per-mesh bounding boxes on a voxel grid.
package buildings

import (
	"fmt"
	"sort"

	"github.com/citymesh/groundgen/internal/scene"
	"github.com/citymesh/groundgen/pkg/geom"
)

// Granularity selects how clusters are reduced to collider descriptors.
type Granularity int

const (
	// WholeBuilding emits one descriptor per cluster: the union of every
	// member box.
	WholeBuilding Granularity = iota
	// PerCell emits one descriptor per populated voxel cell within a
	// cluster, each the union of that cell's boxes. Descriptors share the
	// cluster's building name and carry a part index.
	PerCell
)

// Options tunes box filtering and clustering.
type Options struct {
	// CellSize is the voxel grid cell size in world units.
	CellSize float64
	// MinBoxExtent drops clutter: boxes whose horizontal extents are both
	// below it.
	MinBoxExtent float64
	// MinBoxHeight drops flat boxes, which are usually ground patches.
	MinBoxHeight float64
	// GroundPlaneExtent and GroundPlaneHeight together drop the ground
	// plane itself: boxes wider than GroundPlaneExtent in both horizontal
	// dimensions while shorter than GroundPlaneHeight.
	GroundPlaneExtent float64
	GroundPlaneHeight float64
	// MinClusterExtent drops merged clusters whose horizontal extents are
	// both below it.
	MinClusterExtent float64
	// MinClusterHeight drops merged clusters shorter than it.
	MinClusterHeight float64
	// Granularity selects whole-building or per-cell descriptors.
	Granularity Granularity
}

// DefaultOptions returns clustering defaults tuned for city blocks.
func DefaultOptions() Options {
	return Options{
		CellSize:          30,
		MinBoxExtent:      1.5,
		MinBoxHeight:      0.5,
		GroundPlaneExtent: 200,
		GroundPlaneHeight: 3,
		MinClusterExtent:  5,
		MinClusterHeight:  2,
		Granularity:       WholeBuilding,
	}
}

// Descriptor is one axis-aligned box collider in export form.
type Descriptor struct {
	Building string     `json:"building,omitempty"`
	Type     string     `json:"type"`
	Part     *int       `json:"part,omitempty"`
	Center   [3]float64 `json:"center"`
	Size     [3]float64 `json:"size"`
	Rotation [3]float64 `json:"rotation"`
}

// Stats summarizes one extraction run.
type Stats struct {
	MeshesVisited   int
	BoxesKept       int
	BoxesDropped    int
	Clusters        int
	ClustersDropped int
}

// Extractor clusters building meshes into merged collider boxes.
type Extractor struct {
	scene *scene.Scene
	opts  Options
}

// NewExtractor creates an extractor over an immutable scene snapshot.
func NewExtractor(s *scene.Scene, opts Options) *Extractor {
	return &Extractor{scene: s, opts: opts}
}

// Extract produces collider descriptors for every building cluster.
// Degenerate boxes and undersized clusters are expected filtering, not
// errors, and are only counted.
func (e *Extractor) Extract() ([]Descriptor, Stats, error) {
	if e.opts.CellSize <= 0 {
		return nil, Stats{}, fmt.Errorf("cluster cell size %g must be positive", e.opts.CellSize)
	}

	var stats Stats
	var boxes []geom.AABB
	for i := range e.scene.Meshes {
		stats.MeshesVisited++
		box := e.scene.Meshes[i].Bounds
		if e.keepBox(box) {
			boxes = append(boxes, box)
			stats.BoxesKept++
		} else {
			stats.BoxesDropped++
		}
	}

	grid := newVoxelGrid(e.opts.CellSize)
	for i, box := range boxes {
		c := box.Center()
		grid.insert(c.X, c.Z, i)
	}

	var descriptors []Descriptor
	visited := make(map[cellKey]bool)
	for _, start := range sortedKeys(grid.cells) {
		if visited[start] {
			continue
		}
		component := grid.floodFrom(start, visited)

		combined := geom.EmptyAABB()
		for _, cell := range component {
			for _, idx := range grid.cells[cell] {
				combined = combined.Union(boxes[idx])
			}
		}
		if !e.keepCluster(combined) {
			stats.ClustersDropped++
			continue
		}

		name := fmt.Sprintf("building_%03d", stats.Clusters)
		stats.Clusters++

		switch e.opts.Granularity {
		case PerCell:
			descriptors = append(descriptors, e.perCellDescriptors(name, component, grid, boxes)...)
		default:
			descriptors = append(descriptors, boxDescriptor(name, nil, combined))
		}
	}

	return descriptors, stats, nil
}

// keepBox applies the per-mesh degenerate filters: empty, too flat,
// ground plane, clutter.
func (e *Extractor) keepBox(box geom.AABB) bool {
	if box.IsEmpty() {
		return false
	}
	size := box.Size()
	if size.Y < e.opts.MinBoxHeight {
		return false
	}
	if size.X > e.opts.GroundPlaneExtent && size.Z > e.opts.GroundPlaneExtent && size.Y < e.opts.GroundPlaneHeight {
		return false
	}
	if size.X < e.opts.MinBoxExtent && size.Z < e.opts.MinBoxExtent {
		return false
	}
	return true
}

// keepCluster rejects merged clusters too small in both horizontal
// dimensions or too short to collide with anything.
func (e *Extractor) keepCluster(box geom.AABB) bool {
	size := box.Size()
	if size.X < e.opts.MinClusterExtent && size.Z < e.opts.MinClusterExtent {
		return false
	}
	return size.Y >= e.opts.MinClusterHeight
}

// perCellDescriptors unions each populated cell's boxes separately, numbering
// the parts within the building.
func (e *Extractor) perCellDescriptors(name string, component []cellKey, grid *voxelGrid, boxes []geom.AABB) []Descriptor {
	sort.Slice(component, func(i, j int) bool {
		if component[i].Z != component[j].Z {
			return component[i].Z < component[j].Z
		}
		return component[i].X < component[j].X
	})

	var out []Descriptor
	for _, cell := range component {
		cellBox := geom.EmptyAABB()
		for _, idx := range grid.cells[cell] {
			cellBox = cellBox.Union(boxes[idx])
		}
		part := len(out)
		out = append(out, boxDescriptor(name, &part, cellBox))
	}
	return out
}

func boxDescriptor(name string, part *int, box geom.AABB) Descriptor {
	c := box.Center()
	s := box.Size()
	return Descriptor{
		Building: name,
		Type:     "box",
		Part:     part,
		Center:   [3]float64{c.X, c.Y, c.Z},
		Size:     [3]float64{s.X, s.Y, s.Z},
		Rotation: [3]float64{0, 0, 0},
	}
}

// sortedKeys returns grid keys in deterministic scan order so cluster
// numbering is stable run to run.
func sortedKeys(cells map[cellKey][]int) []cellKey {
	keys := make([]cellKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Z != keys[j].Z {
			return keys[i].Z < keys[j].Z
		}
		return keys[i].X < keys[j].X
	})
	return keys
}
