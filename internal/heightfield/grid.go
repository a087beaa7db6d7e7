// Package heightfield generates and refines the regular-grid ground surface
// approximation consumed by the physics simulation as a terrain collider.
package heightfield

import "fmt"

// Grid is a regular heightfield over a scene's horizontal extent. Heights is
// row-major: index = iy*NX + ix, with ix along world X and iy along world Z.
type Grid struct {
	NX, NY    int
	Width     float64 // World extent along X
	Depth     float64 // World extent along Z
	Heights   []float64
	MinHeight float64
	MaxHeight float64
}

// NewGrid allocates a grid with every cell set to fill.
func NewGrid(nx, ny int, width, depth, fill float64) *Grid {
	g := &Grid{
		NX:        nx,
		NY:        ny,
		Width:     width,
		Depth:     depth,
		Heights:   make([]float64, nx*ny),
		MinHeight: fill,
		MaxHeight: fill,
	}
	for i := range g.Heights {
		g.Heights[i] = fill
	}
	return g
}

// Index returns the flat array index for cell (ix, iy).
func (g *Grid) Index(ix, iy int) int {
	return iy*g.NX + ix
}

// At returns the height at cell (ix, iy).
func (g *Grid) At(ix, iy int) float64 {
	return g.Heights[iy*g.NX+ix]
}

// Set assigns the height at cell (ix, iy).
func (g *Grid) Set(ix, iy int, h float64) {
	g.Heights[iy*g.NX+ix] = h
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	dup := *g
	dup.Heights = make([]float64, len(g.Heights))
	copy(dup.Heights, g.Heights)
	return &dup
}

// Validate checks the grid's structural invariants.
func (g *Grid) Validate() error {
	if g.NX < 2 || g.NY < 2 {
		return fmt.Errorf("grid resolution %dx%d below minimum 2x2", g.NX, g.NY)
	}
	if g.Width <= 0 || g.Depth <= 0 {
		return fmt.Errorf("grid extent %gx%g must be positive", g.Width, g.Depth)
	}
	if len(g.Heights) != g.NX*g.NY {
		return fmt.Errorf("heights length %d does not match %dx%d", len(g.Heights), g.NX, g.NY)
	}
	return nil
}

// LODLevel is one level of the downsampled pyramid. Level 1 is half the base
// resolution, level 2 a quarter, and so on.
type LODLevel struct {
	Level   int
	NX, NY  int
	Heights []float64
}
