package pipeline

import (
	"context"
	"testing"

	"github.com/citymesh/groundgen/internal/buildings"
	"github.com/citymesh/groundgen/internal/config"
	"github.com/citymesh/groundgen/internal/heightfield"
	"github.com/citymesh/groundgen/internal/scene"
	"github.com/citymesh/groundgen/pkg/geom"
)

// testScene builds a small city block: a ground plane and two buildings.
func testScene(t *testing.T) *scene.Scene {
	t.Helper()

	ground := scene.Mesh{
		Name: "ground",
		Vertices: []geom.Vec3{
			{X: -60, Y: 0, Z: -60},
			{X: 60, Y: 0, Z: -60},
			{X: 60, Y: 0, Z: 60},
			{X: -60, Y: 0, Z: 60},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}

	building := func(name string, cx, cz float64) scene.Mesh {
		return scene.Mesh{
			Name: name,
			Vertices: []geom.Vec3{
				{X: cx - 4, Y: 0, Z: cz - 4},
				{X: cx + 4, Y: 15, Z: cz + 4},
				{X: cx - 4, Y: 15, Z: cz - 4},
			},
			Indices: []uint32{0, 1, 2},
		}
	}

	s, err := scene.New([]scene.Mesh{
		ground,
		building("tower_a", 20, 20),
		building("tower_b", 50, 20),
	})
	if err != nil {
		t.Fatalf("building test scene: %v", err)
	}
	return s
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Sampler.NX = 16
	cfg.Sampler.NY = 16
	cfg.Output.Dir = t.TempDir()
	return cfg
}

func TestRun_ProducesBothArtifacts(t *testing.T) {
	cfg := testConfig(t)

	res, err := Run(context.Background(), testScene(t), cfg, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.RunID == "" {
		t.Error("run should be tagged with an id")
	}

	artifact, err := heightfield.ReadArtifact(res.HeightfieldPath)
	if err != nil {
		t.Fatalf("heightfield artifact unreadable: %v", err)
	}
	if artifact.NX != 16 || artifact.NY != 16 {
		t.Errorf("artifact resolution wrong: %dx%d", artifact.NX, artifact.NY)
	}
	if len(artifact.LODLevels) == 0 {
		t.Error("expected lod pyramid in artifact")
	}

	descriptors, err := buildings.ReadFile(res.BuildingsPath)
	if err != nil {
		t.Fatalf("buildings artifact unreadable: %v", err)
	}
	// The two towers sit in adjacent 30-unit cells and merge.
	if len(descriptors) != 1 {
		t.Errorf("expected 1 merged building collider, got %d", len(descriptors))
	}
}

func TestRun_WorkerAndDirectAgree(t *testing.T) {
	s := testScene(t)

	cfgWorker := testConfig(t)
	cfgWorker.Refiner.UseWorker = true
	withWorker, err := Run(context.Background(), s, cfgWorker, nil)
	if err != nil {
		t.Fatalf("Run with worker failed: %v", err)
	}

	cfgDirect := testConfig(t)
	cfgDirect.Refiner.UseWorker = false
	direct, err := Run(context.Background(), s, cfgDirect, nil)
	if err != nil {
		t.Fatalf("Run without worker failed: %v", err)
	}

	a := withWorker.Heightfield.Grid.Heights
	b := direct.Heightfield.Grid.Heights
	if len(a) != len(b) {
		t.Fatalf("grid sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cell %d differs: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestRun_PerCellGranularity(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cluster.Granularity = "cell"

	res, err := Run(context.Background(), testScene(t), cfg, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	descriptors, err := buildings.ReadFile(res.BuildingsPath)
	if err != nil {
		t.Fatalf("buildings artifact unreadable: %v", err)
	}
	if len(descriptors) != 2 {
		t.Fatalf("expected 2 per-cell colliders, got %d", len(descriptors))
	}
	for _, d := range descriptors {
		if d.Part == nil {
			t.Error("per-cell descriptors must carry part indices")
		}
	}
}

func TestRun_BadGranularityFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cluster.Granularity = "nope"

	if _, err := Run(context.Background(), testScene(t), cfg, nil); err == nil {
		t.Error("expected error for invalid granularity")
	}
}
