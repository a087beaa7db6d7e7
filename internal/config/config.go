// Package config handles generation configuration loading and management.
package config

import (
	"fmt"

	"github.com/citymesh/groundgen/internal/buildings"
	"github.com/citymesh/groundgen/internal/heightfield"
	"github.com/citymesh/groundgen/internal/loader"
)

// Config holds all generation and loading settings.
type Config struct {
	Sampler SamplerConfig `yaml:"sampler"`
	Refiner RefinerConfig `yaml:"refiner"`
	Cluster ClusterConfig `yaml:"cluster"`
	Loader  LoaderConfig  `yaml:"loader"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SamplerConfig holds ground-probe settings.
type SamplerConfig struct {
	NX                int     `yaml:"nx"`
	NY                int     `yaml:"ny"`
	NormalUpThreshold float64 `yaml:"normal_up_threshold"`
	GroundThreshold   float64 `yaml:"ground_threshold"`
	ProbeOffsetFrac   float64 `yaml:"probe_offset_frac"`
	RayStartMargin    float64 `yaml:"ray_start_margin"`
}

// RefinerConfig holds repair and downsample settings.
type RefinerConfig struct {
	HoleFillPasses int     `yaml:"hole_fill_passes"`
	SpikeThreshold float64 `yaml:"spike_threshold"`
	SmoothPasses   int     `yaml:"smooth_passes"`
	LODLevels      int     `yaml:"lod_levels"`
	UseWorker      bool    `yaml:"use_worker"`
}

// ClusterConfig holds building clustering settings.
type ClusterConfig struct {
	CellSize          float64 `yaml:"cell_size"`
	MinBoxExtent      float64 `yaml:"min_box_extent"`
	MinBoxHeight      float64 `yaml:"min_box_height"`
	GroundPlaneExtent float64 `yaml:"ground_plane_extent"`
	GroundPlaneHeight float64 `yaml:"ground_plane_height"`
	MinClusterExtent  float64 `yaml:"min_cluster_extent"`
	MinClusterHeight  float64 `yaml:"min_cluster_height"`
	Granularity       string  `yaml:"granularity"` // "whole" or "cell"
}

// LoaderConfig holds server-side collider loading settings.
type LoaderConfig struct {
	MaxAbsHeight      float64 `yaml:"max_abs_height"`
	FallbackExtent    float64 `yaml:"fallback_extent"`
	FallbackThickness float64 `yaml:"fallback_thickness"`
}

// OutputConfig holds artifact file locations.
type OutputConfig struct {
	Dir             string `yaml:"dir"`
	HeightfieldFile string `yaml:"heightfield_file"`
	BuildingsFile   string `yaml:"buildings_file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	sampler := heightfield.DefaultSamplerConfig()
	refiner := heightfield.DefaultRefineConfig()
	cluster := buildings.DefaultOptions()
	load := loader.DefaultHeightfieldOptions()

	return &Config{
		Sampler: SamplerConfig{
			NX:                sampler.NX,
			NY:                sampler.NY,
			NormalUpThreshold: sampler.NormalUpThreshold,
			GroundThreshold:   sampler.GroundThreshold,
			ProbeOffsetFrac:   sampler.ProbeOffsetFrac,
			RayStartMargin:    sampler.RayStartMargin,
		},
		Refiner: RefinerConfig{
			HoleFillPasses: refiner.HoleFillPasses,
			SpikeThreshold: refiner.SpikeThreshold,
			SmoothPasses:   refiner.SmoothPasses,
			LODLevels:      refiner.LODLevels,
			UseWorker:      true,
		},
		Cluster: ClusterConfig{
			CellSize:          cluster.CellSize,
			MinBoxExtent:      cluster.MinBoxExtent,
			MinBoxHeight:      cluster.MinBoxHeight,
			GroundPlaneExtent: cluster.GroundPlaneExtent,
			GroundPlaneHeight: cluster.GroundPlaneHeight,
			MinClusterExtent:  cluster.MinClusterExtent,
			MinClusterHeight:  cluster.MinClusterHeight,
			Granularity:       "whole",
		},
		Loader: LoaderConfig{
			MaxAbsHeight:      load.MaxAbsHeight,
			FallbackExtent:    load.FallbackExtent,
			FallbackThickness: load.FallbackThickness,
		},
		Output: OutputConfig{
			Dir:             "artifacts",
			HeightfieldFile: "heightfield.json",
			BuildingsFile:   "buildings.json",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// SamplerOptions converts the config section to sampler settings.
func (c *Config) SamplerOptions() heightfield.SamplerConfig {
	return heightfield.SamplerConfig{
		NX:                c.Sampler.NX,
		NY:                c.Sampler.NY,
		NormalUpThreshold: c.Sampler.NormalUpThreshold,
		GroundThreshold:   c.Sampler.GroundThreshold,
		ProbeOffsetFrac:   c.Sampler.ProbeOffsetFrac,
		RayStartMargin:    c.Sampler.RayStartMargin,
	}
}

// RefineOptions converts the config section to refinement settings.
func (c *Config) RefineOptions() heightfield.RefineConfig {
	return heightfield.RefineConfig{
		HoleFillPasses: c.Refiner.HoleFillPasses,
		SpikeThreshold: c.Refiner.SpikeThreshold,
		SmoothPasses:   c.Refiner.SmoothPasses,
		LODLevels:      c.Refiner.LODLevels,
	}
}

// ClusterOptions converts the config section to extractor settings.
func (c *Config) ClusterOptions() (buildings.Options, error) {
	opts := buildings.Options{
		CellSize:          c.Cluster.CellSize,
		MinBoxExtent:      c.Cluster.MinBoxExtent,
		MinBoxHeight:      c.Cluster.MinBoxHeight,
		GroundPlaneExtent: c.Cluster.GroundPlaneExtent,
		GroundPlaneHeight: c.Cluster.GroundPlaneHeight,
		MinClusterExtent:  c.Cluster.MinClusterExtent,
		MinClusterHeight:  c.Cluster.MinClusterHeight,
	}
	switch c.Cluster.Granularity {
	case "", "whole":
		opts.Granularity = buildings.WholeBuilding
	case "cell":
		opts.Granularity = buildings.PerCell
	default:
		return opts, fmt.Errorf("unknown cluster granularity %q (want \"whole\" or \"cell\")", c.Cluster.Granularity)
	}
	return opts, nil
}

// LoaderOptions converts the config section to loader settings.
func (c *Config) LoaderOptions() loader.HeightfieldOptions {
	return loader.HeightfieldOptions{
		MaxAbsHeight:      c.Loader.MaxAbsHeight,
		FallbackExtent:    c.Loader.FallbackExtent,
		FallbackThickness: c.Loader.FallbackThickness,
	}
}
