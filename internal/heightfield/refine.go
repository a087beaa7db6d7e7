package heightfield

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// MaxLODLevels caps the pyramid depth regardless of base resolution.
const MaxLODLevels = 5

// RefineConfig tunes the repair and downsample stages.
type RefineConfig struct {
	// HoleFillPasses bounds how far hole averages propagate. Sentinel cells
	// with no non-sentinel neighbor within this many passes stay sentinel.
	HoleFillPasses int
	// SpikeThreshold is how far a cell may rise above (or fall below) its
	// 4-neighborhood before it is replaced by the neighborhood average.
	SpikeThreshold float64
	// SmoothPasses is the number of 5-point stencil smoothing passes.
	SmoothPasses int
	// LODLevels is the requested pyramid depth, clamped to MaxLODLevels.
	LODLevels int
}

// DefaultRefineConfig returns refinement defaults.
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{
		HoleFillPasses: 4,
		SpikeThreshold: 2.5,
		SmoothPasses:   2,
		LODLevels:      MaxLODLevels,
	}
}

// RefineStats summarizes one refinement run.
type RefineStats struct {
	HolesFilled   int
	HolesLeft     int
	SpikesClamped int
}

// Result is the refined grid plus its LOD pyramid.
type Result struct {
	Grid      *Grid
	LODLevels []LODLevel
	Stats     RefineStats
}

// Refine repairs a raw sampled grid and builds its LOD pyramid. The input is
// not modified; all passes run on a working copy. sentinel is the no-data
// value the sampler wrote, normally the scene's minimum height. The result
// is deterministic for identical input and configuration.
func Refine(raw *Grid, sentinel float64, cfg RefineConfig) (*Result, error) {
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("refining heightfield: %w", err)
	}

	g := raw.Clone()
	var stats RefineStats

	for pass := 0; pass < cfg.HoleFillPasses; pass++ {
		filled := fillHoles(g, sentinel)
		stats.HolesFilled += filled
		if filled == 0 {
			break
		}
	}
	stats.HolesLeft = countSentinels(g, sentinel)

	stats.SpikesClamped = clampSpikes(g, cfg.SpikeThreshold)

	for pass := 0; pass < cfg.SmoothPasses; pass++ {
		smooth(g)
	}

	g.MinHeight = floats.Min(g.Heights)
	g.MaxHeight = floats.Max(g.Heights)

	return &Result{
		Grid:      g,
		LODLevels: BuildPyramid(g, cfg.LODLevels),
		Stats:     stats,
	}, nil
}

// fillHoles runs one hole-filling pass: every sentinel cell with at least one
// non-sentinel 4-neighbor becomes the average of those neighbors. The pass
// reads from a snapshot so fill order does not matter. Returns the number of
// cells filled.
func fillHoles(g *Grid, sentinel float64) int {
	src := make([]float64, len(g.Heights))
	copy(src, g.Heights)

	filled := 0
	for iy := 0; iy < g.NY; iy++ {
		for ix := 0; ix < g.NX; ix++ {
			idx := g.Index(ix, iy)
			if src[idx] != sentinel {
				continue
			}

			sum := 0.0
			count := 0
			if ix > 0 && src[idx-1] != sentinel {
				sum += src[idx-1]
				count++
			}
			if ix < g.NX-1 && src[idx+1] != sentinel {
				sum += src[idx+1]
				count++
			}
			if iy > 0 && src[idx-g.NX] != sentinel {
				sum += src[idx-g.NX]
				count++
			}
			if iy < g.NY-1 && src[idx+g.NX] != sentinel {
				sum += src[idx+g.NX]
				count++
			}

			if count > 0 {
				g.Heights[idx] = sum / float64(count)
				filled++
			}
		}
	}
	return filled
}

func countSentinels(g *Grid, sentinel float64) int {
	n := 0
	for _, h := range g.Heights {
		if h == sentinel {
			n++
		}
	}
	return n
}

// clampSpikes replaces interior cells that poke above or below their
// 4-neighborhood by more than threshold with the neighborhood average. This
// suppresses thin building-edge artifacts that survived sampling.
func clampSpikes(g *Grid, threshold float64) int {
	src := make([]float64, len(g.Heights))
	copy(src, g.Heights)

	clamped := 0
	for iy := 1; iy < g.NY-1; iy++ {
		for ix := 1; ix < g.NX-1; ix++ {
			idx := g.Index(ix, iy)
			left := src[idx-1]
			right := src[idx+1]
			down := src[idx-g.NX]
			up := src[idx+g.NX]

			nbMin := min4(left, right, down, up)
			nbMax := max4(left, right, down, up)

			h := src[idx]
			if h > nbMax+threshold || h < nbMin-threshold {
				g.Heights[idx] = (left + right + down + up) / 4
				clamped++
			}
		}
	}
	return clamped
}

// smooth applies one 5-point stencil pass to interior cells, reading from a
// full copy so the result is order-independent within the pass.
func smooth(g *Grid) {
	src := make([]float64, len(g.Heights))
	copy(src, g.Heights)

	for iy := 1; iy < g.NY-1; iy++ {
		for ix := 1; ix < g.NX-1; ix++ {
			idx := g.Index(ix, iy)
			g.Heights[idx] = (src[idx] + src[idx-1] + src[idx+1] + src[idx-g.NX] + src[idx+g.NX]) / 5
		}
	}
}

// BuildPyramid derives successive LOD levels by averaging 2x2 blocks, each
// level floor-halving the previous dimensions. A trailing odd row or column
// is deliberately decimated: published level dimensions stay consistent with
// floor(n/2) and consumers treat levels as coarse approximations only. The
// pyramid stops when either dimension would drop below 2 or the level cap is
// reached.
func BuildPyramid(g *Grid, maxLevels int) []LODLevel {
	if maxLevels > MaxLODLevels {
		maxLevels = MaxLODLevels
	}

	var levels []LODLevel
	nx, ny := g.NX, g.NY
	heights := g.Heights

	for level := 1; level <= maxLevels; level++ {
		halfX, halfY := nx/2, ny/2
		if halfX < 2 || halfY < 2 {
			break
		}

		down := make([]float64, halfX*halfY)
		for iy := 0; iy < halfY; iy++ {
			for ix := 0; ix < halfX; ix++ {
				sx, sy := ix*2, iy*2
				down[iy*halfX+ix] = (heights[sy*nx+sx] +
					heights[sy*nx+sx+1] +
					heights[(sy+1)*nx+sx] +
					heights[(sy+1)*nx+sx+1]) / 4
			}
		}

		levels = append(levels, LODLevel{Level: level, NX: halfX, NY: halfY, Heights: down})
		nx, ny, heights = halfX, halfY, down
	}
	return levels
}

func min4(a, b, c, d float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	if d < m {
		m = d
	}
	return m
}

func max4(a, b, c, d float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	if d > m {
		m = d
	}
	return m
}
