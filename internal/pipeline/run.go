// Package pipeline runs one complete generation pass: ground sampling plus
// refinement and building cluster extraction over the same scene snapshot,
// ending in the two serialized artifacts the physics side consumes.
package pipeline

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/citymesh/groundgen/internal/buildings"
	"github.com/citymesh/groundgen/internal/config"
	"github.com/citymesh/groundgen/internal/heightfield"
	"github.com/citymesh/groundgen/internal/scene"
)

// Result collects everything one generation run produced.
type Result struct {
	RunID           string
	HeightfieldPath string
	BuildingsPath   string

	Heightfield  *heightfield.Result
	SampleStats  heightfield.SampleStats
	Descriptors  []buildings.Descriptor
	ClusterStats buildings.Stats
}

// Run generates both artifacts for a scene. The two producers are
// independent and run concurrently over the immutable snapshot; each works
// on its own private state, so there is no shared mutable memory between
// them. A run is atomic: on error nothing is written and the run is simply
// re-executed from scratch.
func Run(ctx context.Context, s *scene.Scene, cfg *config.Config, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	res := &Result{
		RunID:           uuid.NewString(),
		HeightfieldPath: filepath.Join(cfg.Output.Dir, cfg.Output.HeightfieldFile),
		BuildingsPath:   filepath.Join(cfg.Output.Dir, cfg.Output.BuildingsFile),
	}
	log = log.With(zap.String("run_id", res.RunID))

	clusterOpts, err := cfg.ClusterOptions()
	if err != nil {
		return nil, err
	}

	log.Info("generation run started",
		zap.Int("meshes", len(s.Meshes)),
		zap.Int("triangles", s.TriangleCount()))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, stats, err := heightfield.NewSampler(s, cfg.SamplerOptions()).Sample()
		if err != nil {
			return err
		}
		res.SampleStats = stats
		log.Info("ground sampling finished",
			zap.Int("rays", stats.RaysCast),
			zap.Int("holes", stats.Holes))

		sentinel := s.Bounds.Min.Y
		refined, err := refine(ctx, raw, sentinel, cfg)
		if err != nil {
			return err
		}
		res.Heightfield = refined
		log.Info("heightfield refined",
			zap.Int("holesFilled", refined.Stats.HolesFilled),
			zap.Int("holesLeft", refined.Stats.HolesLeft),
			zap.Int("spikesClamped", refined.Stats.SpikesClamped),
			zap.Int("lodLevels", len(refined.LODLevels)))
		return nil
	})

	g.Go(func() error {
		descriptors, stats, err := buildings.NewExtractor(s, clusterOpts).Extract()
		if err != nil {
			return err
		}
		res.Descriptors = descriptors
		res.ClusterStats = stats
		log.Info("building clusters extracted",
			zap.Int("boxesKept", stats.BoxesKept),
			zap.Int("boxesDropped", stats.BoxesDropped),
			zap.Int("clusters", stats.Clusters),
			zap.Int("clustersDropped", stats.ClustersDropped),
			zap.Int("colliders", len(descriptors)))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := heightfield.NewArtifact(res.Heightfield).WriteFile(res.HeightfieldPath); err != nil {
		return nil, err
	}
	if err := buildings.WriteFile(res.BuildingsPath, res.Descriptors); err != nil {
		return nil, err
	}

	log.Info("generation run finished",
		zap.String("heightfield", res.HeightfieldPath),
		zap.String("buildings", res.BuildingsPath))
	return res, nil
}

// refine runs the refinement stage, through the one-shot worker when
// configured, off the sampling goroutine.
func refine(ctx context.Context, raw *heightfield.Grid, sentinel float64, cfg *config.Config) (*heightfield.Result, error) {
	if !cfg.Refiner.UseWorker {
		return heightfield.Refine(raw, sentinel, cfg.RefineOptions())
	}

	w := heightfield.NewWorker(cfg.RefineOptions())
	w.Start()
	defer w.Stop()
	return w.Process(ctx, heightfield.PayloadFromGrid(raw, sentinel))
}
