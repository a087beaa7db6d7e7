package loader

import (
	"go.uber.org/zap"

	"github.com/citymesh/groundgen/internal/buildings"
	"github.com/citymesh/groundgen/internal/physics"
)

// BuildingsResult reports how many box colliders were constructed.
type BuildingsResult struct {
	IDs    []physics.ColliderID
	Failed int
}

// LoadBuildings reads an exported collider file and registers one static box
// collider per entry. Malformed entries surface as construction errors from
// the engine and are logged per entry without aborting the batch; a missing
// or unreadable file loads nothing. Never returns an error.
func LoadBuildings(world physics.World, path string, log *zap.Logger) BuildingsResult {
	if log == nil {
		log = zap.NewNop()
	}

	descriptors, err := buildings.ReadFile(path)
	if err != nil {
		log.Error("reading building colliders failed", zap.String("path", path), zap.Error(err))
		return BuildingsResult{}
	}

	var res BuildingsResult
	for i, d := range descriptors {
		id, err := world.AddBox(physics.BoxDesc{
			Center:   d.Center,
			Size:     d.Size,
			Rotation: d.Rotation,
		})
		if err != nil {
			res.Failed++
			log.Error("building collider construction failed",
				zap.Int("entry", i), zap.String("building", d.Building), zap.Error(err))
			continue
		}
		res.IDs = append(res.IDs, id)
	}

	log.Info("building colliders loaded",
		zap.Int("count", len(res.IDs)), zap.Int("failed", res.Failed))
	return res
}
