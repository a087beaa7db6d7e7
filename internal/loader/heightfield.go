// Package loader turns exported terrain artifacts into physics colliders at
// world initialization. Its guiding policy: loading must never prevent the
// physics world from starting. Every failure mode degrades to a safe default
// and is logged, and recoverable anomalies are corrected with only advisory
// logging.
package loader

import (
	"encoding/json"
	"math"
	"os"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/citymesh/groundgen/internal/physics"
)

// HeightfieldOptions tunes sanitization and the flat-ground fallback.
type HeightfieldOptions struct {
	// MaxAbsHeight clamps sanitized heights to [-MaxAbsHeight, MaxAbsHeight].
	MaxAbsHeight float64
	// FallbackExtent is the half extent of the flat fallback ground box.
	FallbackExtent float64
	// FallbackThickness is the fallback box's vertical size; its top face
	// sits at y=0.
	FallbackThickness float64
}

// DefaultHeightfieldOptions returns loader defaults.
func DefaultHeightfieldOptions() HeightfieldOptions {
	return HeightfieldOptions{
		MaxAbsHeight:      1000,
		FallbackExtent:    2000,
		FallbackThickness: 1,
	}
}

// HeightfieldResult reports what the loader constructed.
type HeightfieldResult struct {
	ID          physics.ColliderID
	Fallback    bool
	Corrections int
}

// heightfieldFile mirrors the artifact schema for loading. Dimensions decode
// as float64 so integrality can be checked explicitly.
type heightfieldFile struct {
	NX      float64   `json:"nx"`
	NY      float64   `json:"ny"`
	Width   float64   `json:"width"`
	Depth   float64   `json:"depth"`
	Heights []float64 `json:"heights"`
}

// LoadHeightfield reads an exported heightfield file and registers a terrain
// collider with the physics world. On any failure it logs the specific
// mismatch and registers a flat fallback ground collider instead; it never
// returns an error.
func LoadHeightfield(world physics.World, path string, opts HeightfieldOptions, log *zap.Logger) HeightfieldResult {
	if log == nil {
		log = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("reading heightfield file failed", zap.String("path", path), zap.Error(err))
		return fallbackGround(world, opts, log)
	}

	var file heightfieldFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Error("heightfield file malformed", zap.String("path", path), zap.Error(err))
		return fallbackGround(world, opts, log)
	}

	// Validation order: dimensions, array shape, world extent. Any mismatch
	// rejects the whole file.
	nx, ny := int(file.NX), int(file.NY)
	if float64(nx) != file.NX || float64(ny) != file.NY || nx <= 1 || ny <= 1 {
		log.Error("heightfield dimensions invalid",
			zap.Float64("nx", file.NX), zap.Float64("ny", file.NY))
		return fallbackGround(world, opts, log)
	}
	if len(file.Heights) != nx*ny {
		log.Error("heightfield size mismatch",
			zap.Int("expected", nx*ny), zap.Int("got", len(file.Heights)))
		return fallbackGround(world, opts, log)
	}
	if !(file.Width > 0) || !(file.Depth > 0) ||
		math.IsInf(file.Width, 0) || math.IsInf(file.Depth, 0) {
		log.Error("heightfield extent invalid",
			zap.Float64("width", file.Width), zap.Float64("depth", file.Depth))
		return fallbackGround(world, opts, log)
	}

	corrections := sanitizeHeights(file.Heights, opts.MaxAbsHeight)
	if corrections > 0 {
		log.Warn("heightfield values corrected", zap.Int("count", corrections))
	}

	desc := physics.HeightfieldDesc{
		Rows:      ny,
		Cols:      nx,
		Heights:   file.Heights,
		SpacingX:  file.Width / float64(nx-1),
		SpacingZ:  file.Depth / float64(ny-1),
		MinHeight: floats.Min(file.Heights),
		MaxHeight: floats.Max(file.Heights),
	}

	id, err := world.AddHeightfield(desc)
	if err != nil {
		log.Error("heightfield collider construction failed", zap.Error(err))
		return fallbackGround(world, opts, log)
	}

	log.Info("heightfield collider loaded",
		zap.Int("nx", nx), zap.Int("ny", ny),
		zap.Float64("minHeight", desc.MinHeight), zap.Float64("maxHeight", desc.MaxHeight))
	return HeightfieldResult{ID: id, Corrections: corrections}
}

// sanitizeHeights repairs the array in place: non-finite values become 0 and
// out-of-range values clamp to the bound. Returns the correction count.
func sanitizeHeights(heights []float64, maxAbs float64) int {
	corrections := 0
	for i, h := range heights {
		switch {
		case math.IsNaN(h) || math.IsInf(h, 0):
			heights[i] = 0
			corrections++
		case h > maxAbs:
			heights[i] = maxAbs
			corrections++
		case h < -maxAbs:
			heights[i] = -maxAbs
			corrections++
		}
	}
	return corrections
}

// fallbackGround registers the flat safety collider: a wide thin box whose
// top face is at y=0.
func fallbackGround(world physics.World, opts HeightfieldOptions, log *zap.Logger) HeightfieldResult {
	desc := physics.BoxDesc{
		Center: [3]float64{0, -opts.FallbackThickness / 2, 0},
		Size:   [3]float64{opts.FallbackExtent * 2, opts.FallbackThickness, opts.FallbackExtent * 2},
	}
	id, err := world.AddBox(desc)
	if err != nil {
		// Nothing left to degrade to; the world starts with no ground.
		log.Error("fallback ground construction failed", zap.Error(err))
		return HeightfieldResult{Fallback: true}
	}
	log.Info("flat fallback ground collider loaded", zap.Float64("extent", opts.FallbackExtent))
	return HeightfieldResult{ID: id, Fallback: true}
}
