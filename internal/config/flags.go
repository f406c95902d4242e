package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagDriver   = flag.String("driver", "", "Terrain engine driver")
	flagMinLevel = flag.Int("min-level", -1, "Shallowest level to build")
	flagMaxLevel = flag.Int("max-level", -1, "Deepest level to build")
	flagWorkers  = flag.Int("workers", 0, "Parallel tile builders")
	flagOutput   = flag.String("output", "", "Output directory for built tiles")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
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
	if *flagDriver != "" {
		cfg.Terrain.Driver = *flagDriver
	}
	if *flagMinLevel >= 0 {
		cfg.Build.MinLevel = uint32(*flagMinLevel)
	}
	if *flagMaxLevel >= 0 {
		cfg.Build.MaxLevel = uint32(*flagMaxLevel)
	}
	if *flagWorkers > 0 {
		cfg.Build.Workers = *flagWorkers
	}
	if *flagOutput != "" {
		cfg.Build.OutputDir = *flagOutput
	}
}
