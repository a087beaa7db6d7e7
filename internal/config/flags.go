package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagOut      = flag.String("out", "", "Artifact output directory")
	flagNX       = flag.Int("nx", 0, "Heightfield resolution along X")
	flagNY       = flag.Int("ny", 0, "Heightfield resolution along Z")
	flagCellSize = flag.Float64("cell-size", 0, "Building cluster voxel cell size")
	flagPerCell  = flag.Bool("per-cell", false, "Export one box per voxel cell instead of one per building")
)

// ParseFlags parses the given command-line arguments. Subcommand binaries
// pass everything after the subcommand name.
func ParseFlags(args []string) error {
	return flag.CommandLine.Parse(args)
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagNX > 0 {
		cfg.Sampler.NX = *flagNX
	}
	if *flagNY > 0 {
		cfg.Sampler.NY = *flagNY
	}
	if *flagCellSize > 0 {
		cfg.Cluster.CellSize = *flagCellSize
	}
	if *flagPerCell {
		cfg.Cluster.Granularity = "cell"
	}
}
