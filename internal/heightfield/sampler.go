package heightfield

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/citymesh/groundgen/internal/scene"
	"github.com/citymesh/groundgen/pkg/geom"
)

// SamplerConfig holds the probe and filter tuning for ground sampling.
type SamplerConfig struct {
	// NX, NY is the requested grid resolution.
	NX int
	NY int
	// NormalUpThreshold is the minimum |normal.Y| for a hit to count as an
	// up-facing surface. Hits below it are walls and are rejected.
	NormalUpThreshold float64
	// GroundThreshold is the maximum height above the scene's global minimum
	// for a hit to count as ground. Hits above it are roofs and ledges.
	GroundThreshold float64
	// ProbeOffsetFrac is the probe offset used around each sample point,
	// as a fraction of the grid spacing. Offsets reduce gaps at mesh seams.
	ProbeOffsetFrac float64
	// RayStartMargin is how far above the scene's maximum height probe rays
	// start.
	RayStartMargin float64
}

// DefaultSamplerConfig returns sampling defaults tuned for city scenes.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		NX:                128,
		NY:                128,
		NormalUpThreshold: 0.5,
		GroundThreshold:   8.0,
		ProbeOffsetFrac:   0.25,
		RayStartMargin:    1.0,
	}
}

// SampleStats summarizes one sampling run.
type SampleStats struct {
	RaysCast int
	Cells    int
	Holes    int
}

// Sampler casts downward probes across a uniform grid over a scene's
// horizontal extent and keeps the lowest up-facing, near-floor hit per cell.
// Cells with no surviving hit are left at the sentinel value, the scene's
// minimum height, for downstream hole filling.
type Sampler struct {
	scene *scene.Scene
	cfg   SamplerConfig
}

// NewSampler creates a sampler over an immutable scene snapshot.
func NewSampler(s *scene.Scene, cfg SamplerConfig) *Sampler {
	return &Sampler{scene: s, cfg: cfg}
}

// Sample produces the raw heightfield. The returned grid's MinHeight is the
// sentinel value; holes are expected output, not errors.
func (s *Sampler) Sample() (*Grid, SampleStats, error) {
	if s.cfg.NX < 2 || s.cfg.NY < 2 {
		return nil, SampleStats{}, fmt.Errorf("sampler resolution %dx%d below minimum 2x2", s.cfg.NX, s.cfg.NY)
	}
	bounds := s.scene.Bounds
	size := bounds.Size()
	if size.X <= 0 || size.Z <= 0 {
		return nil, SampleStats{}, fmt.Errorf("scene has no horizontal extent: %gx%g", size.X, size.Z)
	}

	sentinel := bounds.Min.Y
	grid := NewGrid(s.cfg.NX, s.cfg.NY, size.X, size.Z, sentinel)

	stepX := size.X / float64(s.cfg.NX-1)
	stepZ := size.Z / float64(s.cfg.NY-1)
	offX := s.cfg.ProbeOffsetFrac * stepX
	offZ := s.cfg.ProbeOffsetFrac * stepZ
	rayTop := bounds.Max.Y + s.cfg.RayStartMargin

	// Sample point plus four symmetric diagonal offsets.
	offsets := [5][2]float64{
		{0, 0},
		{offX, offZ},
		{offX, -offZ},
		{-offX, offZ},
		{-offX, -offZ},
	}

	var stats SampleStats
	stats.Cells = s.cfg.NX * s.cfg.NY

	for iy := 0; iy < s.cfg.NY; iy++ {
		z := bounds.Min.Z + float64(iy)*stepZ
		for ix := 0; ix < s.cfg.NX; ix++ {
			x := bounds.Min.X + float64(ix)*stepX

			best := math.Inf(1)
			found := false
			for _, off := range offsets {
				stats.RaysCast++
				ray := geom.Ray{
					Origin:    geom.Vec3{X: x + off[0], Y: rayTop, Z: z + off[1]},
					Direction: geom.Vec3{Y: -1},
				}
				if h, ok := s.lowestGroundHit(ray, sentinel); ok && h < best {
					best = h
					found = true
				}
			}

			if found {
				grid.Set(ix, iy, best)
			} else {
				stats.Holes++
			}
		}
	}

	// Sentinel cells participate in the advertised range.
	grid.MinHeight = floats.Min(grid.Heights)
	grid.MaxHeight = floats.Max(grid.Heights)

	return grid, stats, nil
}

// lowestGroundHit casts one downward probe through the scene and returns the
// lowest hit height that passes the up-facing normal and ground-threshold
// filters.
func (s *Sampler) lowestGroundHit(ray geom.Ray, floorY float64) (float64, bool) {
	best := math.Inf(1)
	found := false

	for i := range s.scene.Meshes {
		m := &s.scene.Meshes[i]
		if _, hit := ray.IntersectAABB(m.Bounds); !hit {
			continue
		}
		for tri := 0; tri < m.TriangleCount(); tri++ {
			a, b, c := m.Triangle(tri)
			t, hit := ray.IntersectTriangle(a, b, c)
			if !hit {
				continue
			}
			n := geom.TriangleNormal(a, b, c)
			if math.Abs(n.Y) < s.cfg.NormalUpThreshold {
				continue // Wall or steep face
			}
			h := ray.Origin.Y - t
			if h-floorY > s.cfg.GroundThreshold {
				continue // Roof or ledge
			}
			if h < best {
				best = h
				found = true
			}
		}
	}
	return best, found
}
