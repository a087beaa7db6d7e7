// groundgen is a CLI for generating terrain collision artifacts from a city
// scene snapshot: a refined ground heightfield and merged building colliders.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/citymesh/groundgen/internal/buildings"
	"github.com/citymesh/groundgen/internal/config"
	"github.com/citymesh/groundgen/internal/heightfield"
	"github.com/citymesh/groundgen/internal/logger"
	"github.com/citymesh/groundgen/internal/pipeline"
	"github.com/citymesh/groundgen/internal/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "generate", "gen":
		cmdGenerate(args)
	case "buildings":
		cmdBuildings(args)
	case "refine":
		cmdRefine(args)
	case "check":
		cmdCheck(args)
	case "init-config":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`groundgen - city scene terrain collider generation

Usage:
  groundgen <command> [options]

Commands:
  generate <scene.json> [flags]        Generate heightfield and building artifacts
  buildings <scene.json> [flags]       Extract building colliders only
  refine <in.json> <out.json> [flags]  Re-run refinement on a raw heightfield file
  check <heightfield.json> [buildings.json]
                                       Validate exported artifacts and print a summary
  init-config [path]                   Write a default config file

Flags (generate/buildings/refine):
  -config <path>     Config file to use
  -out <dir>         Artifact output directory
  -nx, -ny <n>       Heightfield resolution
  -cell-size <n>     Building cluster voxel cell size
  -per-cell          One box per voxel cell instead of one per building
  -debug             Debug logging

Examples:
  groundgen generate city.json -out artifacts
  groundgen buildings city.json -per-cell
  groundgen check artifacts/heightfield.json artifacts/buildings.json`)
}

// setup parses flags, loads config, and initializes logging.
func setup(args []string) *config.Config {
	if err := config.ParseFlags(args); err != nil {
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func fatal(err error) {
	logger.Log.Error("command failed", zap.Error(err))
	logger.Sync()
	os.Exit(1)
}

func cmdGenerate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: groundgen generate <scene.json> [flags]")
		os.Exit(1)
	}
	scenePath := args[0]
	cfg := setup(args[1:])
	defer logger.Sync()

	s, err := scene.Load(scenePath)
	if err != nil {
		fatal(err)
	}

	res, err := pipeline.Run(context.Background(), s, cfg, logger.Log)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Heightfield: %s (%dx%d, %d lod levels)\n",
		res.HeightfieldPath, res.Heightfield.Grid.NX, res.Heightfield.Grid.NY, len(res.Heightfield.LODLevels))
	fmt.Printf("Buildings:   %s (%d colliders from %d clusters)\n",
		res.BuildingsPath, len(res.Descriptors), res.ClusterStats.Clusters)
}

func cmdBuildings(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: groundgen buildings <scene.json> [flags]")
		os.Exit(1)
	}
	scenePath := args[0]
	cfg := setup(args[1:])
	defer logger.Sync()

	s, err := scene.Load(scenePath)
	if err != nil {
		fatal(err)
	}

	opts, err := cfg.ClusterOptions()
	if err != nil {
		fatal(err)
	}
	descriptors, stats, err := buildings.NewExtractor(s, opts).Extract()
	if err != nil {
		fatal(err)
	}

	path := filepath.Join(cfg.Output.Dir, cfg.Output.BuildingsFile)
	if err := buildings.WriteFile(path, descriptors); err != nil {
		fatal(err)
	}

	fmt.Printf("%s: %d colliders (%d clusters, %d boxes kept, %d dropped)\n",
		path, len(descriptors), stats.Clusters, stats.BoxesKept, stats.BoxesDropped)
}

func cmdRefine(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: groundgen refine <in.json> <out.json> [flags]")
		os.Exit(1)
	}
	inPath, outPath := args[0], args[1]
	cfg := setup(args[2:])
	defer logger.Sync()

	artifact, err := heightfield.ReadArtifact(inPath)
	if err != nil {
		fatal(err)
	}

	grid := artifact.Grid()
	w := heightfield.NewWorker(cfg.RefineOptions())
	w.Start()
	defer w.Stop()

	res, err := w.Process(context.Background(), heightfield.PayloadFromGrid(grid, artifact.MinHeight))
	if err != nil {
		fatal(err)
	}
	if err := heightfield.NewArtifact(res).WriteFile(outPath); err != nil {
		fatal(err)
	}

	fmt.Printf("%s: %d holes filled, %d spikes clamped, %d lod levels\n",
		outPath, res.Stats.HolesFilled, res.Stats.SpikesClamped, len(res.LODLevels))
}

func cmdCheck(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: groundgen check <heightfield.json> [buildings.json]")
		os.Exit(1)
	}

	artifact, err := heightfield.ReadArtifact(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	holes := 0
	for _, h := range artifact.Heights {
		if h == artifact.MinHeight {
			holes++
		}
	}
	fmt.Printf("%s\n", args[0])
	fmt.Printf("  resolution: %dx%d over %.1f x %.1f\n", artifact.NX, artifact.NY, artifact.Width, artifact.Depth)
	fmt.Printf("  height range: %.2f .. %.2f\n", artifact.MinHeight, artifact.MaxHeight)
	fmt.Printf("  cells at minimum: %d\n", holes)
	fmt.Printf("  lod levels: %d\n", len(artifact.LODLevels))

	if len(args) > 1 {
		descriptors, err := buildings.ReadFile(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		names := map[string]bool{}
		for _, d := range descriptors {
			if d.Building != "" {
				names[d.Building] = true
			}
		}
		fmt.Printf("%s\n", args[1])
		fmt.Printf("  colliders: %d\n", len(descriptors))
		fmt.Printf("  buildings: %d\n", len(names))
	}
}

func cmdInitConfig(args []string) {
	cfg := config.Default()

	var err error
	if len(args) > 0 {
		err = cfg.SaveTo(args[0])
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	path := "config directory"
	if len(args) > 0 {
		path = args[0]
	}
	fmt.Printf("Default config written to %s\n", path)
}
