// Package physics declares the collider-construction surface of the
// rigid-body engine. The engine itself is an external collaborator; this
// package only defines what the loaders need from it. Colliders registered
// with a World are static infrastructure for the lifetime of the process.
package physics

// ColliderID identifies a collider registered with the engine.
type ColliderID int

// HeightfieldDesc describes a terrain collider: a Rows x Cols grid of
// heights with world-space spacing between adjacent samples.
type HeightfieldDesc struct {
	Rows    int
	Cols    int
	Heights []float64
	// SpacingX, SpacingZ are the world distances between adjacent columns
	// and rows.
	SpacingX  float64
	SpacingZ  float64
	MinHeight float64
	MaxHeight float64
}

// BoxDesc describes a static box collider positioned at Center with the
// given full extents and XYZ Euler rotation in radians.
type BoxDesc struct {
	Center   [3]float64
	Size     [3]float64
	Rotation [3]float64
}

// World is the engine's collider registry. Construction errors are returned,
// never panicked, so loaders can degrade gracefully.
type World interface {
	AddHeightfield(desc HeightfieldDesc) (ColliderID, error)
	AddBox(desc BoxDesc) (ColliderID, error)
}
