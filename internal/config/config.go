// Package config handles tool configuration loading and management.
package config

import "time"

// Config holds all tool settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Build   BuildConfig   `yaml:"build"`
	Cache   CacheConfig   `yaml:"cache"`
	Source  SourceConfig  `yaml:"source"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig holds terrain engine settings.
type TerrainConfig struct {
	Driver          string  `yaml:"driver"`
	TileSize        int     `yaml:"tile_size"`
	HeightfieldSize int     `yaml:"heightfield_size"`
	VerticalScale   float32 `yaml:"vertical_scale"`
	FirstLOD        uint32  `yaml:"first_lod"`
}

// BuildConfig holds tile build run settings.
type BuildConfig struct {
	MinLevel  uint32 `yaml:"min_level"`
	MaxLevel  uint32 `yaml:"max_level"`
	Workers   int    `yaml:"workers"`
	OutputDir string `yaml:"output_dir"`
}

// CacheConfig holds tile cache settings.
type CacheConfig struct {
	Path string `yaml:"path"` // SQLite tile store; empty disables caching
}

// SourceConfig holds tile source settings.
type SourceConfig struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Driver:          "quad",
			TileSize:        256,
			HeightfieldSize: 17,
			VerticalScale:   1,
			FirstLOD:        0,
		},
		Build: BuildConfig{
			MinLevel:  0,
			MaxLevel:  4,
			Workers:   4,
			OutputDir: "tiles",
		},
		Cache: CacheConfig{
			Path: "",
		},
		Source: SourceConfig{
			FetchTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
